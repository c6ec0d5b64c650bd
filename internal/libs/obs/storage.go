package obs

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
)

// watchedKeyParts select the state keys worth logging
var watchedKeyParts = []string{"highlight", "sphinx"}

// StorageHook returns a store hook that logs writes and removals of
// highlight state keys at debug level
func StorageHook(logger zerolog.Logger) db.Hook {
	return func(_ context.Context, ev db.Event) {
		keys := watchedKeys(ev.Keys)
		if len(keys) == 0 {
			return
		}

		e := logger.Debug().Str("op", string(ev.Op)).Strs("keys", keys)
		if ev.Op == db.OpSet {
			e = e.Str("value", ev.Value)
		}
		if ev.Err != nil {
			e = e.AnErr("store_err", ev.Err)
		}
		e.Msg("highlight state changed")
	}
}

func watchedKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		lower := strings.ToLower(k)
		for _, part := range watchedKeyParts {
			if strings.Contains(lower, part) {
				out = append(out, k)
				break
			}
		}
	}
	return out
}
