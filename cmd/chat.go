package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dchat/client/internal/chathub"
	"dchat/client/internal/directory"
	"dchat/client/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	Long: `Connects to the hub and opens an interactive prompt.

Plain lines go to the active room. Commands:
  /rooms          list rooms
  /users          list users
  /join <n|id>    make a room active
  /msg <n>        open (or create) a private room with user n
  /quit           exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if a.store.Token() == "" {
		return fmt.Errorf("not logged in, run: dchat login")
	}
	if a.store.Expired() {
		a.log.Warn().Msg("stored token looks expired, the hub may reject the connection")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := chathub.NewConn(a.cfg.HubURL, a.store, a.log)
	if err := conn.Connect(); err != nil {
		return err
	}
	defer conn.Close()

	rooms := directory.NewRoomDirectory(a.api, a.log)
	users := directory.NewUserDirectory(a.api, a.cfg.PageSize, a.log)
	if err := rooms.Refresh(ctx); err != nil {
		a.log.Warn().Err(err).Msg("initial rooms load failed")
	}
	if err := users.Refresh(ctx); err != nil {
		a.log.Warn().Err(err).Msg("initial users load failed")
	}
	rooms.ResolvePrivateNames(users.Users())

	mgr := chathub.NewManagerService(conn, a.api, a.store, a.cfg.SendTimeout, a.log)
	mgr.OnForeignMessage = rooms.Touch
	mgr.OnPresence = func(event, text string) {
		fmt.Printf("  -- %s: %s\n", event, text)
	}

	view := newThreadView(os.Stdout, a.store.UserID())
	mgr.OnChange = func() {
		// Runs on the manager loop, so direct buffer access is safe here.
		view.render(mgr.Buffer.Snapshot())
	}
	go mgr.Run()
	defer mgr.Stop()

	fmt.Printf("connected as %s. /rooms to list rooms, /quit to exit.\n", a.store.UserName())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	repl := &chatREPL{app: a, mgr: mgr, rooms: rooms, users: users}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := repl.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

type chatREPL struct {
	app   *app
	mgr   *chathub.ManagerService
	rooms *directory.RoomDirectory
	users *directory.UserDirectory

	roomOrder []string // list shown by the last /rooms, for /join <n>
	userOrder []string // list shown by the last /users, for /msg <n>
}

// handle processes one input line. Returns true on /quit.
func (r *chatREPL) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if r.mgr.Tracker.Active() == "" {
			fmt.Println("no active room, use /join first")
			return false
		}
		r.mgr.Send(line)
		return false
	}

	cmd, rest, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "quit", "q":
		return true
	case "rooms":
		r.listRooms(ctx)
	case "users":
		r.listUsers(ctx)
	case "join":
		r.join(strings.TrimSpace(rest))
	case "msg":
		r.openPrivate(ctx, strings.TrimSpace(rest))
	default:
		fmt.Printf("unknown command /%s\n", cmd)
	}
	return false
}

func (r *chatREPL) listRooms(ctx context.Context) {
	if err := r.rooms.Refresh(ctx); err == nil {
		r.rooms.ResolvePrivateNames(r.users.Users())
	}
	listed := r.rooms.Rooms()
	r.roomOrder = r.roomOrder[:0]
	for i, room := range listed {
		active := " "
		if room.RoomID == r.mgr.Tracker.Active() {
			active = ">"
		}
		fmt.Printf("%s %2d. %s\n", active, i+1, room.Title())
		r.roomOrder = append(r.roomOrder, room.RoomID)
	}
}

func (r *chatREPL) listUsers(ctx context.Context) {
	if err := r.users.Refresh(ctx); err != nil {
		fmt.Println("could not load users")
		return
	}
	r.userOrder = r.userOrder[:0]
	for i, u := range r.users.Users() {
		marker := " "
		if u.IsOnline {
			marker = "*"
		}
		fmt.Printf("%2d. %s %s\n", i+1, marker, u.Name)
		r.userOrder = append(r.userOrder, u.ID)
	}
}

func (r *chatREPL) join(arg string) {
	if arg == "" {
		fmt.Println("usage: /join <n|roomId>")
		return
	}
	roomID := arg
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.roomOrder) {
			fmt.Println("no such room, run /rooms first")
			return
		}
		roomID = r.roomOrder[n-1]
	}
	r.mgr.SelectRoom(roomID)
	if room, ok := r.rooms.Get(roomID); ok {
		fmt.Printf("-- %s --\n", room.Title())
	}
}

func (r *chatREPL) openPrivate(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(r.userOrder) {
		fmt.Println("usage: /msg <n> (run /users first)")
		return
	}
	userID := r.userOrder[n-1]

	created, err := r.app.api.CreatePrivateRoom(ctx, userID)
	if err != nil {
		fmt.Println("could not open private room")
		r.app.log.Warn().Err(err).Msg("create private room failed")
		return
	}

	r.rooms.RememberMember(created.RoomID, userID)
	if err := r.rooms.Refresh(ctx); err == nil {
		r.rooms.ResolvePrivateNames(r.users.Users())
	}
	r.mgr.SelectRoom(created.RoomID)
}

// threadView renders the active thread incrementally: new entries as they
// arrive, plus a re-render of any already shown entry whose delivery status
// changed (echo confirming a send, a failure mark, a sweep demotion).
// Entries are tracked by temp id when they have one, server id otherwise;
// the echo replacement keeps the temp id, so the key is stable across it.
type threadView struct {
	out     io.Writer
	selfID  string
	printed int
	shown   map[string]models.DeliveryStatus
}

func newThreadView(out io.Writer, selfID string) *threadView {
	return &threadView{out: out, selfID: selfID, shown: make(map[string]models.DeliveryStatus)}
}

func (v *threadView) render(msgs []models.Message) {
	if len(msgs) < v.printed {
		// Кімнату перемкнули, буфер почався заново.
		v.printed = 0
		v.shown = make(map[string]models.DeliveryStatus)
	}

	for i := range msgs {
		m := msgs[i]
		key := m.TempID
		if key == "" {
			key = m.ID
		}
		if i >= v.printed {
			v.printLine(m)
			v.shown[key] = m.Status
			continue
		}
		if prev, ok := v.shown[key]; ok && prev != m.Status {
			v.printLine(m)
			v.shown[key] = m.Status
		}
	}
	v.printed = len(msgs)
}

func (v *threadView) printLine(m models.Message) {
	mark := ""
	switch m.Status {
	case models.StatusSending:
		mark = " …"
	case models.StatusFailed:
		mark = " (failed)"
	}
	name := m.UserName
	if m.UserID == v.selfID {
		name = "me"
	}
	fmt.Fprintf(v.out, "[%s] %s: %s%s\n", m.CreatedAt.Format(time.Kitchen), name, m.Display(), mark)
}
