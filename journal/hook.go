package journal

import (
	"github.com/rs/zerolog/log"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/integrity"
)

// A Hook writes evictions and completed sweeps into a Recorder.
type Hook struct {
	recorder *Recorder
}

// NewHook creates a hook that writes into r.
func NewHook(r *Recorder) *Hook {
	return &Hook{recorder: r}
}

// Func implements hooking.Hook.
func (h *Hook) Func(ctx hooking.HookCtx) {
	var err error

	switch ctx.Pos {
	case integrity.HookPosEvict:
		err = h.recorder.InsertData(TableEvictions,
			NewEvictionRow(ctx.Detail.(integrity.Eviction)))
	case integrity.HookPosSweepComplete:
		err = h.recorder.InsertData(TableSweeps,
			NewSweepRow(ctx.Detail.(integrity.SweepComplete)))
	default:
		return
	}

	if err != nil {
		log.Error().Err(err).Str("pos", ctx.Pos.Name).Msg("journal")
	}
}
