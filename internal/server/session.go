package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/eldritchhouse/internal/history"
	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
	"github.com/lawnchairsociety/eldritchhouse/internal/mapgen"
	"github.com/lawnchairsociety/eldritchhouse/internal/navigation"
	"github.com/lawnchairsociety/eldritchhouse/internal/throttle"
)

// Reply message types
const (
	replyRoom  = "room"
	replyMap   = "map"
	replyError = "error"
	replyBye   = "bye"
)

// roomView describes the focused room and the exits a client may offer.
type roomView struct {
	Type  string                  `json:"type"`
	Seed  int64                   `json:"seed"`
	Focus house.RoomID            `json:"focus"`
	Room  string                  `json:"room"`
	Exits map[string]house.RoomID `json:"exits"`
}

type mapView struct {
	Type  string `json:"type"`
	Seed  int64  `json:"seed"`
	Rooms int    `json:"rooms"`
	Map   string `json:"map"`
}

type errorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type byeReply struct {
	Type string `json:"type"`
}

// Session is one connected client exploring its own house.
type Session struct {
	id     uint64
	client Client
	server *Server
	log    *slog.Logger

	layout *mapgen.Layout
	house  *house.House
	nav    *navigation.Navigator
	regens *throttle.Tracker
}

func newSession(id uint64, client Client, s *Server) *Session {
	return &Session{
		id:     id,
		client: client,
		server: s,
		log:    logger.With("session", id, "remote_addr", client.RemoteAddr()),
		regens: throttle.NewTracker(s.cfg.Server.Regen),
	}
}

// generate replaces the session's house with a freshly generated one.
func (ss *Session) generate(ctx context.Context, seed int64) error {
	gen := ss.server.cfg.Generation
	cfg := &mapgen.Config{
		RoomCount:         gen.RoomCount,
		Seed:              seed,
		MaxFailedAttempts: gen.MaxFailedAttempts,
	}

	layout, err := history.Generate(ctx, ss.server.store, cfg, ss.server.catalog, gen.Retries, "server")
	if err != nil {
		return err
	}

	h, err := layout.BuildHouse()
	if err != nil {
		return fmt.Errorf("failed to build house: %w", err)
	}

	ss.layout = layout
	ss.house = h
	ss.nav = navigation.NewNavigator(h)
	ss.log.Info("House ready", "seed", layout.Seed, "rooms", h.GetRoomCount())
	return nil
}

// Run serves the session until the client quits or disconnects.
func (ss *Session) Run(ctx context.Context) {
	if err := ss.generate(ctx, ss.server.cfg.Generation.ResolveSeed()); err != nil {
		ss.send(errorReply{Type: replyError, Error: err.Error()})
		return
	}
	ss.send(ss.view())

	for {
		line, err := ss.client.ReadLine()
		if err != nil {
			ss.log.Debug("Session read ended", "error", err)
			return
		}

		reply, quit := ss.Handle(ctx, line)
		if err := ss.send(reply); err != nil {
			ss.log.Debug("Session write failed", "error", err)
			return
		}
		if quit {
			return
		}
	}
}

// Handle executes one command line and returns the reply to send.
func (ss *Session) Handle(ctx context.Context, line string) (reply any, quit bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return errorReply{Type: replyError, Error: "empty command"}, false
	}

	cmd, args := fields[0], fields[1:]

	// Bare directions are shorthand for go
	if _, ok := house.ParseDirection(cmd); ok && len(args) == 0 {
		cmd, args = "go", fields
	}

	switch cmd {
	case "look", "l":
		return ss.view(), false

	case "go", "move":
		if len(args) != 1 {
			return errorReply{Type: replyError, Error: "usage: go <room id|direction>"}, false
		}
		return ss.goTo(args[0]), false

	case "map":
		return mapView{
			Type:  replyMap,
			Seed:  ss.layout.Seed,
			Rooms: len(ss.layout.Rooms),
			Map:   mapgen.Render(ss.layout),
		}, false

	case "regen":
		seed := ss.server.cfg.Generation.ResolveSeed()
		key := ""
		if len(args) > 0 {
			parsed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errorReply{Type: replyError, Error: fmt.Sprintf("invalid seed %q", args[0])}, false
			}
			seed, key = parsed, strconv.FormatInt(parsed, 10)
		}
		if r := ss.regens.Check(key); !r.Allowed {
			ss.log.Debug("Regen throttled", "reason", r.Reason, "wait", r.Wait)
			return errorReply{Type: replyError, Error: fmt.Sprintf("%s, retry in %ds", r.Reason, int(r.Wait.Seconds())+1)}, false
		}
		if err := ss.generate(ctx, seed); err != nil {
			return errorReply{Type: replyError, Error: err.Error()}, false
		}
		return ss.view(), false

	case "quit", "exit":
		return byeReply{Type: replyBye}, true

	default:
		return errorReply{Type: replyError, Error: fmt.Sprintf("unknown command %q", cmd)}, false
	}
}

// goTo moves focus by room id or direction.
func (ss *Session) goTo(arg string) any {
	if dir, ok := house.ParseDirection(arg); ok {
		if _, ok := ss.nav.Move(dir); !ok {
			return errorReply{Type: replyError, Error: fmt.Sprintf("no exit %s", dir)}
		}
		return ss.view()
	}

	id, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return errorReply{Type: replyError, Error: fmt.Sprintf("invalid room %q", arg)}
	}
	if !ss.nav.ChangeRoom(house.RoomID(id)) {
		return errorReply{Type: replyError, Error: fmt.Sprintf("room %d is not connected to room %d", id, ss.nav.Focus())}
	}
	return ss.view()
}

func (ss *Session) view() roomView {
	room := ss.nav.Room()
	exits := make(map[string]house.RoomID)
	for d, id := range room.GetConnections() {
		exits[d.String()] = id
	}
	return roomView{
		Type:  replyRoom,
		Seed:  ss.layout.Seed,
		Focus: room.ID,
		Room:  room.Name(),
		Exits: exits,
	}
}

func (ss *Session) send(reply any) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}
	return ss.client.WriteLine(string(data))
}
