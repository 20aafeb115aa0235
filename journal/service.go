package journal

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/platformerkit/server/game/character"
	"github.com/kasuganosora/platformerkit/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry holds one state transition to be journaled.
type Entry struct {
	CharacterID   string
	CharacterName string
	Team          string
	From          string
	To            string
	Forced        bool
	Tick          uint64
	Snapshot      interface{}
}

// BodySnapshot is the character state stored alongside a transition.
type BodySnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
	Facing float64 `json:"facing"`
	MoveX  float64 `json:"move_x"`
}

// Options tunes the write path. Zero fields take defaults.
type Options struct {
	Buffer        int
	BatchSize     int
	FlushInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Buffer <= 0 {
		o.Buffer = 1024
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 2 * time.Second
	}
	return o
}

// Service writes transitions asynchronously in batches so the tick loop
// never waits on the database.
type Service struct {
	db      *gorm.DB
	opts    Options
	ch      chan *model.Transition
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
	logger  *zap.Logger
}

// New creates a journal Service and starts its background worker.
func New(db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	opts = opts.withDefaults()
	svc := &Service{
		db:     db,
		opts:   opts,
		ch:     make(chan *model.Transition, opts.Buffer),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record enqueues an entry. It never blocks: when the buffer is full or the
// service has stopped, the entry is dropped and counted.
func (svc *Service) Record(entry Entry) {
	var snap datatypes.JSON
	if entry.Snapshot != nil {
		data, err := json.Marshal(entry.Snapshot)
		if err != nil {
			svc.logger.Warn("journal snapshot not encodable", zap.Error(err))
		} else {
			snap = datatypes.JSON(data)
		}
	}
	record := &model.Transition{
		CharacterID:   entry.CharacterID,
		CharacterName: entry.CharacterName,
		Team:          entry.Team,
		FromState:     entry.From,
		ToState:       entry.To,
		Forced:        entry.Forced,
		Tick:          entry.Tick,
		Snapshot:      snap,
	}
	select {
	case <-svc.stopCh:
		svc.dropped.Add(1)
		return
	default:
	}
	select {
	case svc.ch <- record:
	default:
		svc.dropped.Add(1)
		svc.logger.Warn("journal channel full, dropping entry",
			zap.String("character", entry.CharacterName),
			zap.String("to", entry.To))
	}
}

// Listen records a character state transition. Its signature matches the
// world's transition listener.
func (svc *Service) Listen(c *character.Character, t character.Transition, tick uint64) {
	svc.Record(Entry{
		CharacterID:   c.ID.String(),
		CharacterName: c.Name,
		Team:          c.Team().String(),
		From:          character.StateName(t.From),
		To:            character.StateName(t.To),
		Forced:        t.Forced,
		Tick:          tick,
		Snapshot: BodySnapshot{
			X:      c.Body.Position.X,
			Y:      c.Body.Position.Y,
			Health: c.Health.Current(),
			Facing: c.Facing(),
			MoveX:  c.MovementDirection().X,
		},
	})
}

// Dropped returns how many entries were discarded.
func (svc *Service) Dropped() int64 { return svc.dropped.Load() }

// Query filters Recent.
type Query struct {
	CharacterID string
	SinceTick   uint64
	Limit       int
}

// MaxLimit caps the number of rows Recent returns.
const MaxLimit = 500

// Recent returns persisted transitions, newest first.
func (svc *Service) Recent(ctx context.Context, q Query) ([]model.Transition, error) {
	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	tx := svc.db.WithContext(ctx).Model(&model.Transition{})
	if q.CharacterID != "" {
		tx = tx.Where("character_id = ?", q.CharacterID)
	}
	if q.SinceTick > 0 {
		tx = tx.Where("tick >= ?", q.SinceTick)
	}
	var out []model.Transition
	if err := tx.Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]*model.Transition, 0, svc.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("journal batch write failed",
				zap.Int("size", len(batch)),
				zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= svc.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= svc.opts.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
