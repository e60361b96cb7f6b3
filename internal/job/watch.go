package job

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/ytget/yt-download-server/internal/model"
)

// Watch returns a change feed for one job: it polls the registry at the
// given interval and emits a snapshot only when the serialized state
// differs from the previously emitted one. The channel closes after the
// terminal snapshot has been delivered, when ctx is done, or immediately
// when the job id is unknown.
func (r *Registry) Watch(ctx context.Context, id string, interval time.Duration) <-chan model.Snapshot {
	ch := make(chan model.Snapshot, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last []byte
		for {
			snap, ok := r.Get(id)
			if !ok {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				return
			}
			if !bytes.Equal(payload, last) {
				last = payload
				select {
				case ch <- snap:
				case <-ctx.Done():
					return
				}
			}
			if snap.Status.IsTerminal() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}
