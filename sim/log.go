package sim

import (
	"log"

	"github.com/milk9111/sunnyland/controller"
)

// LogListeners subscribes logf to every event kind of c and returns the
// subscription ids. Move and Climb events with a zero input are skipped,
// since hosts emit them every frame. A nil logf uses log.Printf.
func LogListeners(c *controller.Controller, logf func(format string, args ...any)) []controller.ListenerID {
	if logf == nil {
		logf = log.Printf
	}
	kinds := controller.EventKinds()
	ids := make([]controller.ListenerID, 0, len(kinds))
	for _, kind := range kinds {
		ids = append(ids, c.Listeners().Subscribe(kind, func(ev controller.Event) {
			switch ev.Kind {
			case controller.EventMove, controller.EventClimb:
				if ev.Value == 0 {
					return
				}
				logf("sim: %s %.2f", ev.Kind, ev.Value)
			case controller.EventJump, controller.EventHurt:
				logf("sim: %s", ev.Kind)
			default:
				logf("sim: %s %t", ev.Kind, ev.Flag)
			}
		}))
	}
	return ids
}
