package chathub

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

// defaultSendTimeout bounds how long an optimistic entry may stay
// "sending" before it is demoted to "failed".
const defaultSendTimeout = 15 * time.Second

// HubConn is what the manager needs from the connection.
type HubConn interface {
	Invoker
	Events() <-chan HubEvent
	StateChanges() <-chan ConnState
}

// MessageLoader fetches room history over REST. *api.Client satisfies it.
type MessageLoader interface {
	GetRoomMessages(ctx context.Context, roomID string) (*models.MessageHistory, error)
}

// Identity names the local author for optimistic entries. *session.Store
// satisfies it.
type Identity interface {
	UserID() string
	UserName() string
}

type loadResult struct {
	roomID  string
	history []models.Message
	err     error
}

// ManagerService is the room-session state machine. All mutable state
// (tracker, buffer) is written by the Run goroutine only; every input — user
// command, REST callback, hub event, connection transition — arrives over
// a channel, so ordinary sequential reasoning holds throughout. The one
// concession to outside readers is Tracker.Active, which is guarded inside
// the tracker so the prompt goroutine can consult it directly.
type ManagerService struct {
	Tracker *Tracker
	Buffer  *Buffer

	conn   HubConn
	loader MessageLoader
	who    Identity
	log    zerolog.Logger

	SelectCh chan string
	SendCh   chan string

	loadedCh   chan loadResult
	snapshotCh chan chan []models.Message
	quit       chan struct{}

	sendTimeout time.Duration

	// OnChange fires after every visible buffer mutation. Runs on the
	// loop goroutine; keep it cheap.
	OnChange func()
	// OnForeignMessage fires for authoritative messages addressed to a
	// non-active room, so the rooms directory can bump lastMessageAt.
	OnForeignMessage func(roomID string, at time.Time)
	// OnPresence fires for UserJoined / UserLeft notifications.
	OnPresence func(event, text string)
}

// NewManagerService wires the state machine. Run must be started for any
// command to take effect. sendTimeout bounds the stuck-send demotion
// window; zero or negative falls back to the default.
func NewManagerService(conn HubConn, loader MessageLoader, who Identity, sendTimeout time.Duration, log zerolog.Logger) *ManagerService {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &ManagerService{
		Tracker:     NewTracker(conn, log),
		Buffer:      NewBuffer(),
		conn:        conn,
		loader:      loader,
		who:         who,
		log:         log,
		SelectCh:    make(chan string),
		SendCh:      make(chan string),
		loadedCh:    make(chan loadResult, 4),
		snapshotCh:  make(chan chan []models.Message),
		quit:        make(chan struct{}),
		sendTimeout: sendTimeout,
	}
}

// Run is the single event loop. Everything that mutates tracker or buffer
// state happens here.
func (m *ManagerService) Run() {
	sweep := time.NewTicker(time.Second)
	defer sweep.Stop()

	for {
		select {
		case <-m.quit:
			return
		case roomID := <-m.SelectCh:
			m.handleSelect(roomID)
		case text := <-m.SendCh:
			m.handleSend(text)
		case res := <-m.loadedCh:
			m.handleLoaded(res)
		case ev := <-m.conn.Events():
			m.handleEvent(ev)
		case st := <-m.conn.StateChanges():
			m.handleState(st)
		case resp := <-m.snapshotCh:
			resp <- m.Buffer.Snapshot()
		case <-sweep.C:
			m.handleSweep()
		}
	}
}

// Stop terminates the loop. Idempotent is not required here: callers stop
// the manager exactly once, on session teardown.
func (m *ManagerService) Stop() {
	close(m.quit)
}

// SelectRoom makes roomID the active room. Empty deselects.
func (m *ManagerService) SelectRoom(roomID string) {
	select {
	case m.SelectCh <- roomID:
	case <-m.quit:
	}
}

// Send queues a text message for the active room.
func (m *ManagerService) Send(text string) {
	select {
	case m.SendCh <- text:
	case <-m.quit:
	}
}

// Messages returns a point-in-time copy of the active room's buffer.
func (m *ManagerService) Messages() []models.Message {
	resp := make(chan []models.Message, 1)
	select {
	case m.snapshotCh <- resp:
		return <-resp
	case <-m.quit:
		return nil
	}
}

func (m *ManagerService) handleSelect(roomID string) {
	if roomID == m.Tracker.Active() {
		return
	}

	m.Tracker.SetActiveRoom(roomID)
	m.Buffer.Reset(roomID)
	m.notify()
	if roomID == "" {
		return
	}

	// Історію тягнемо поза циклом; відповідь повертається через loadedCh
	// і відкидається, якщо кімната вже не активна.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		history, err := m.loader.GetRoomMessages(ctx, roomID)
		res := loadResult{roomID: roomID, err: err}
		if err == nil {
			res.history = history.Messages
		}
		select {
		case m.loadedCh <- res:
		case <-m.quit:
		}
	}()
}

func (m *ManagerService) handleLoaded(res loadResult) {
	if res.roomID != m.Tracker.Active() {
		// Late response for a room the user already left. Never let it
		// overwrite the buffer of the room shown now.
		m.log.Debug().Str("room", res.roomID).Msg("discard stale history response")
		return
	}
	if res.err != nil {
		// Degrade to an empty thread, keep the session alive.
		m.log.Warn().Err(res.err).Str("room", res.roomID).Msg("load history failed")
		return
	}

	m.Buffer.Load(res.history)
	m.notify()
}

func (m *ManagerService) handleSend(text string) {
	roomID := m.Tracker.Active()
	if roomID == "" || text == "" {
		return
	}

	tempID := m.Buffer.AppendOptimistic(m.who.UserID(), m.who.UserName(), text)
	payload := models.SendPayload{
		RoomID:      roomID,
		MessageText: text,
		MessageType: models.MessageTypeText,
		TempID:      tempID,
	}
	if err := m.conn.Invoke(models.TargetSendMessageToRoom, payload); err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("send failed")
		m.Buffer.MarkFailed(tempID)
	}
	m.notify()
}

func (m *ManagerService) handleEvent(ev HubEvent) {
	switch ev.Event {
	case models.EventReceiveMessage:
		msg := *ev.Message
		if m.Buffer.OnAuthoritative(msg) {
			m.notify()
			return
		}
		// Повідомлення чужої кімнати: буфер не чіпаємо, але список
		// кімнат має оновити lastMessageAt.
		if m.OnForeignMessage != nil && msg.RoomID != "" {
			at := msg.CreatedAt
			if at.IsZero() {
				at = time.Now()
			}
			m.OnForeignMessage(msg.RoomID, at)
		}
	case models.EventUserJoined, models.EventUserLeft:
		if m.OnPresence != nil {
			m.OnPresence(ev.Event, ev.Text)
		}
	}
}

func (m *ManagerService) handleState(st ConnState) {
	m.log.Info().Stringer("state", st).Msg("hub state changed")
	if st == StateConnected {
		m.Tracker.Resubscribe()
	}
}

func (m *ManagerService) handleSweep() {
	demoted := m.Buffer.SweepStale(time.Now().Add(-m.sendTimeout))
	if len(demoted) > 0 {
		m.log.Warn().Int("count", len(demoted)).Msg("pending sends timed out")
		m.notify()
	}
}

func (m *ManagerService) notify() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
