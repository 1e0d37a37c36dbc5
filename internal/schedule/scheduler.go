package schedule

import (
	"context"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
	"codeberg.org/ccs/datalogd/internal/sensor"
	"codeberg.org/ccs/datalogd/internal/state"
)

// DefaultQuantum is the wall-clock duration of one tick.
const DefaultQuantum = 60 * time.Second

// binding pairs a descriptor with its bound collaborator.
type binding struct {
	desc *Descriptor
	src  sensor.Source
}

// Scheduler drives the tick loop: every quantum it advances each bound
// source's counter and records the sources that are due. Per-source
// failures are logged and never abort the loop.
type Scheduler struct {
	store          *Store
	rec            Recorder
	states         state.Repository
	log            *logger.Logger
	quantum        time.Duration
	collectOnStart bool
	bound          []binding
}

// Options tune scheduler behavior.
type Options struct {
	// Quantum is the tick duration; zero means DefaultQuantum.
	Quantum time.Duration

	// CollectOnStart makes the first tick after load due for every
	// source, avoiding a cold-start wait as long as the longest period.
	CollectOnStart bool
}

func New(store *Store, rec Recorder, states state.Repository, log *logger.Logger, opts Options) *Scheduler {
	quantum := opts.Quantum
	if quantum <= 0 {
		quantum = DefaultQuantum
	}

	return &Scheduler{
		store:          store,
		rec:            rec,
		states:         states,
		log:            log,
		quantum:        quantum,
		collectOnStart: opts.CollectOnStart,
	}
}

// Restore reloads persisted schedule state into the store, so a
// restart resumes rollover accounting on the files it left behind.
func (s *Scheduler) Restore(ctx context.Context) error {
	snapshots, err := s.states.Load(ctx)
	if err != nil {
		return err
	}
	s.store.Restore(snapshots)
	if len(snapshots) > 0 {
		s.log.Debug().Int("sources", len(snapshots)).Msg("Restored schedule state")
	}

	return nil
}

// Bind resolves collaborators to descriptors by name. A collaborator
// with no matching descriptor is logged and excluded from collection
// until reconfiguration; a failing Configure call excludes the source
// the same way. Bound sources keep the store's stable order.
func (s *Scheduler) Bind(sources []sensor.Source) {
	errFactory := errors.New()

	byLabel := make(map[string]sensor.Source, len(sources))
	for _, src := range sources {
		label := src.Label()
		if _, ok := s.store.Lookup(label); !ok {
			s.log.ErrorWithCode(errFactory.WithData(ErrUnboundSource, label)).
				Msg("No descriptor for collaborator; excluded from collection")
			continue
		}
		byLabel[label] = src
	}

	s.bound = s.bound[:0]
	for _, d := range s.store.All() {
		src, ok := byLabel[d.Name]
		if !ok {
			s.log.Info().Str("source", d.Name).Msg("No collaborator bound; source will not be collected")
			continue
		}

		if c, ok := src.(sensor.Configurable); ok {
			if err := c.Configure(d.Settings); err != nil {
				s.log.ErrorWithCode(errFactory.Wrap(ErrConfigureBind, err).WithData(d.Name)).
					Msg("Configure failed; source excluded from collection")
				continue
			}
		}
		if lb, ok := src.(sensor.LogBinder); ok {
			lb.BindLogger(s.log)
		}

		s.bound = append(s.bound, binding{desc: d, src: src})
	}

	s.log.Info().Int("bound", len(s.bound)).Int("configured", s.store.Len()).
		Msg("Sources bound")
}

// Run owns the tick loop until ctx is cancelled. Cancellation latency
// is bounded by one quantum.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.quantum)
	defer ticker.Stop()

	first := true
	for {
		select {
		case <-ctx.Done():
			// The run context is already cancelled here; the final
			// snapshot still has to reach storage.
			s.persist(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			s.step(ctx, first)
			first = false
		}
	}
}

// step advances every bound source by one tick and collects the ones
// that are due.
func (s *Scheduler) step(ctx context.Context, first bool) {
	wrote := false
	for i := range s.bound {
		b := &s.bound[i]
		b.desc.TickCounter++
		due := b.desc.TickCounter >= b.desc.Period
		if first && s.collectOnStart {
			due = true
		}
		if !due {
			continue
		}
		b.desc.TickCounter = 0
		if s.collect(ctx, b) {
			wrote = true
		}
	}

	if wrote {
		s.persist(ctx)
	}
}

// CollectAll performs one unconditional collection pass over every
// bound source, bypassing periods. A wake event is due for everyone.
func (s *Scheduler) CollectAll(ctx context.Context) {
	for i := range s.bound {
		b := &s.bound[i]
		b.desc.TickCounter = 0
		s.collect(ctx, b)
	}
	s.persist(ctx)
}

// collect samples one source and records the result. Failures are
// converted to bounded log events here so one source can never block
// another.
func (s *Scheduler) collect(ctx context.Context, b *binding) bool {
	errFactory := errors.New()

	smp, err := b.src.Sample(ctx)
	if err != nil {
		s.log.ErrorWithCode(errFactory.Wrap(ErrCollectFailed, err).WithData(b.desc.Name)).
			Msg("Sample failed; skipping this collection")
		return false
	}

	if err := s.rec.Record(b.desc, smp); err != nil {
		s.log.ErrorWithCode(errFactory.Wrap(ErrRecordFailed, err).WithData(b.desc.Name)).
			Msg("Record failed; row dropped")
		return false
	}

	return true
}

func (s *Scheduler) persist(ctx context.Context) {
	if err := s.states.Save(ctx, s.store.Snapshots()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist schedule state")
	}
}
