// Package reconcile merges three message sources (live socket frames,
// REST history and the local cache) into one ordered, deduplicated
// timeline keyed by message id.
package reconcile

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"chatlink/internal/api"
	"chatlink/internal/chat/transport"
	"chatlink/internal/dbsqlite"
)

// Origin records which source produced a Message.
type Origin string

const (
	OriginSocket  Origin = "socket"
	OriginRest    Origin = "rest"
	OriginCache   Origin = "cache"
	OriginPending Origin = "pending"
)

// FallbackDisplayName is shown for senders whose name is unknown. REST
// history rows carry no display name, so every non-self sender from that
// source renders this way until a socket frame names them.
const FallbackDisplayName = "User"

// Message is the display form of a chat message.
type Message struct {
	ID          string
	Content     string
	SenderID    string
	DisplayName string
	Timestamp   time.Time
	Origin      Origin
}

// Reconciler is not safe for concurrent use; the session's event loop is
// its only caller.
type Reconciler struct {
	selfID   string
	selfName string

	timeline []Message
	index    map[string]int // id -> timeline position

	// realtime is the set of ids already seen via the socket (or inserted
	// optimistically). REST rows with these ids are suppressed. It grows
	// for the life of the session; sessions are view-scoped and short.
	realtime map[string]struct{}
}

func New(selfID, selfName string) *Reconciler {
	return &Reconciler{
		selfID:   selfID,
		selfName: selfName,
		index:    make(map[string]int),
		realtime: make(map[string]struct{}),
	}
}

// IngestSocket folds one inbound frame into the timeline. It returns the
// resulting Message and whether the timeline grew (a false second return
// for idempotent re-delivery or non-chat frames). An echo of a pending id
// confirms the optimistic entry instead of appending.
func (r *Reconciler) IngestSocket(f transport.Frame) (Message, bool) {
	if f.MessageType != transport.FrameChat && f.MessageType != transport.FrameHistory {
		return Message{}, false
	}
	if f.Payload == nil || f.Meta == nil {
		return Message{}, false
	}

	id := f.Meta.MessageID
	if id == "" {
		id = uuid.NewString()
	}
	r.realtime[id] = struct{}{}

	if pos, ok := r.index[id]; ok {
		if r.timeline[pos].Origin == OriginPending {
			r.timeline[pos].Origin = OriginSocket
			if ts, err := parseTimestamp(f.Meta.Timestamp); err == nil {
				r.timeline[pos].Timestamp = ts
				r.resort()
			}
			return r.timeline[pos], false
		}
		return r.timeline[pos], false
	}

	ts, err := parseTimestamp(f.Meta.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	msg := Message{
		ID:          id,
		Content:     f.Payload.Content,
		SenderID:    f.Meta.SenderID,
		DisplayName: f.Payload.DisplayName,
		Timestamp:   ts,
		Origin:      OriginSocket,
	}
	r.append(msg)
	return msg, true
}

// IngestRESTHistory merges a history backfill into the timeline, skipping
// rows that already arrived over the socket. It returns the rows that
// were actually new so the caller can persist exactly those.
func (r *Reconciler) IngestRESTHistory(rows []api.MessageRow) []api.MessageRow {
	fresh := make([]api.MessageRow, 0, len(rows))
	for _, row := range rows {
		if _, seen := r.realtime[row.ID]; seen {
			continue
		}
		if _, dup := r.index[row.ID]; dup {
			continue
		}
		r.append(r.fromRow(row, OriginRest))
		fresh = append(fresh, row)
	}
	r.resort()
	return fresh
}

// IngestCacheRows loads the offline fallback. Only called when the REST
// fetch itself failed, so there is no realtime filtering to do beyond the
// usual id dedup.
func (r *Reconciler) IngestCacheRows(rows []dbsqlite.Message) {
	for _, row := range rows {
		if _, dup := r.index[row.ID]; dup {
			continue
		}

		ts := row.SentFromServer
		if ts.IsZero() {
			ts = row.SentFromClient
		}
		name := FallbackDisplayName
		if row.SenderID == r.selfID {
			name = r.selfName
		}
		r.append(Message{
			ID:          row.ID,
			Content:     row.Content,
			SenderID:    row.SenderID,
			DisplayName: name,
			Timestamp:   ts,
			Origin:      OriginCache,
		})
	}
	r.resort()
}

// InsertOptimistic shows locally composed text before the server confirms
// it. The id is pre-marked realtime-seen so a later backfill cannot
// duplicate the message once the send is acknowledged.
func (r *Reconciler) InsertOptimistic(content string) Message {
	msg := Message{
		ID:          uuid.NewString(),
		Content:     content,
		SenderID:    r.selfID,
		DisplayName: r.selfName,
		Timestamp:   time.Now().UTC(),
		Origin:      OriginPending,
	}
	r.realtime[msg.ID] = struct{}{}
	r.append(msg)
	return msg
}

// Timeline returns a copy of the merged message list, oldest first.
func (r *Reconciler) Timeline() []Message {
	out := make([]Message, len(r.timeline))
	copy(out, r.timeline)
	return out
}

func (r *Reconciler) Len() int {
	return len(r.timeline)
}

func (r *Reconciler) fromRow(row api.MessageRow, origin Origin) Message {
	// Prefer the server clock when the row has one.
	ts, err := parseTimestamp(row.SentFromServer)
	if err != nil {
		if ts, err = parseTimestamp(row.SentFromClient); err != nil {
			ts = time.Now().UTC()
		}
	}

	name := FallbackDisplayName
	if row.SenderID == r.selfID {
		name = r.selfName
	}

	return Message{
		ID:          row.ID,
		Content:     row.Content,
		SenderID:    row.SenderID,
		DisplayName: name,
		Timestamp:   ts,
		Origin:      origin,
	}
}

func (r *Reconciler) append(msg Message) {
	r.index[msg.ID] = len(r.timeline)
	r.timeline = append(r.timeline, msg)
	if len(r.timeline) > 1 && msg.Timestamp.Before(r.timeline[len(r.timeline)-2].Timestamp) {
		r.resort()
	}
}

// resort restores ascending timestamp order. The sort is stable so equal
// stamps keep their arrival order; cross-clock skew between client and
// server stamps is an accepted limitation, not something to correct.
func (r *Reconciler) resort() {
	sort.SliceStable(r.timeline, func(i, j int) bool {
		return r.timeline[i].Timestamp.Before(r.timeline[j].Timestamp)
	})
	for i := range r.timeline {
		r.index[r.timeline[i].ID] = i
	}
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339, s)
}
