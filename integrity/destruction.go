package integrity

import (
	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

// A DestructionListener removes the memory at a block as soon as the player
// breaks it.
type DestructionListener struct {
	hooking.HookableBase

	loader *memory.Loader
	keyAt  location.BlockKeyFunc
}

// OnPlayerDestroyBlock handles a block broken by the local player.
func (l *DestructionListener) OnPlayerDestroyBlock(b world.BlockBreak) {
	bank, ok := l.loader.Active()
	if !ok || b.World == nil {
		return
	}

	if !bank.Metadata().Integrity.RemoveOnPlayerBlockBreak {
		return
	}

	key := l.keyAt(b.World, b.Pos)
	if !bank.RemoveMemory(key, b.Pos) {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosEvict,
		Item:   b.State,
		Detail: Eviction{
			BankID: bank.ID(),
			Key:    key,
			Pos:    b.Pos,
			Cause:  CausePlayerBlockBreak,
			Tick:   b.World.GameTime(),
		},
	})
}
