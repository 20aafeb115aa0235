package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeam_Allies(t *testing.T) {
	heroes := &Team{Name: "heroes"}
	villagers := &Team{Name: "villagers"}
	monsters := &Team{Name: "monsters"}
	heroes.Allies = []*Team{villagers}

	assert.True(t, heroes.IsAlly(heroes))
	assert.True(t, heroes.IsAlly(villagers))
	assert.False(t, villagers.IsAlly(heroes), "alliances are one-way")
	assert.True(t, heroes.IsEnemy(monsters))
	assert.True(t, heroes.IsEnemy(nil))
}

func TestTeam_Nil(t *testing.T) {
	var none *Team
	assert.False(t, none.IsAlly(nil))
	assert.True(t, none.IsEnemy(&Team{}))
	assert.Equal(t, "<none>", none.String())
}
