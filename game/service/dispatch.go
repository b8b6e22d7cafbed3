package service

import (
	"errors"

	"barikade/game/engine"
	"barikade/game/room"
	"barikade/transport/protocol"
)

// HandleConnect greets a fresh connection. The offered session ID is held
// on the connection so a join without an explicit ID adopts it; nothing is
// registered until the client actually joins.
func (s *Service) HandleConnect(c ClientConn) {
	offered := s.sessions.Issue()
	c.SetSessionID(offered)
	c.Send(protocol.NewHello(offered))
	s.log.Debug().Str("session", offered).Msg("connection greeted")
}

// HandleDisconnect retires the connection's session binding. A close from a
// connection that has already been replaced by a reconnect is stale and
// changes nothing.
func (s *Service) HandleDisconnect(c ClientConn) {
	if c.ConnSeq() == 0 {
		return
	}
	if !s.sessions.Detach(c.SessionID(), c.ConnSeq()) {
		s.log.Debug().Str("session", c.SessionID()).Msg("stale close ignored")
		return
	}
	code := c.RoomCode()
	if code == "" {
		return
	}
	r, err := s.rooms.Get(code)
	if err != nil {
		return
	}
	r.Disconnect(c.SessionID())
	s.record(code, "disconnected", map[string]string{"sessionId": c.SessionID()})
	s.log.Info().Str("session", c.SessionID()).Str("room", code).Msg("player disconnected")
	s.broadcastState(r)
}

// HandleMessage decodes and dispatches one client message. Frames that do
// not parse at all are dropped silently; rejections of parseable intents go
// back to the sender as ERR; accepted changes are broadcast to the room as
// a fresh STATE snapshot.
func (s *Service) HandleMessage(c ClientConn, raw []byte) {
	intent, err := protocol.Decode(raw)
	if errors.Is(err, protocol.ErrMalformedEnvelope) {
		// Unattributable garbage is dropped without a reply.
		s.log.Debug().Str("session", c.SessionID()).Msg("dropping malformed message")
		return
	}
	if err != nil {
		c.Send(protocol.NewError(err))
		return
	}

	switch m := intent.(type) {
	case *protocol.HostRoom:
		err = s.handleHost(c, m)
	case *protocol.JoinRoom:
		err = s.handleJoin(c, m)
	case *protocol.ClaimColor:
		err = s.inRoom(c, func(r *room.Room) error {
			if err := r.ClaimColor(c.SessionID(), engine.Color(m.Color)); err != nil {
				return err
			}
			s.record(r.Code, "color_claimed", map[string]string{"sessionId": c.SessionID(), "color": m.Color})
			return nil
		})
	case *protocol.StartGame:
		err = s.inRoom(c, func(r *room.Room) error {
			if err := r.Start(c.SessionID()); err != nil {
				return err
			}
			s.record(r.Code, "game_started", nil)
			return nil
		})
	case *protocol.ResetRoom:
		err = s.inRoom(c, func(r *room.Room) error {
			if err := r.Reset(c.SessionID(), m.KeepPlayers); err != nil {
				return err
			}
			s.record(r.Code, "room_reset", map[string]bool{"keepPlayers": m.KeepPlayers})
			return nil
		})
	case *protocol.BoardSet:
		err = s.inRoom(c, func(r *room.Room) error {
			if m.Board == nil {
				return engine.NewRuleError(protocol.CodeBadMessage, "BOARD_SET carries no board")
			}
			if err := r.SetBoard(c.SessionID(), m.Board, m.Name); err != nil {
				return err
			}
			s.record(r.Code, "board_set", map[string]string{"name": m.Name})
			return nil
		})
	case *protocol.RequestRoll:
		err = s.inRoom(c, func(r *room.Room) error {
			roll, err := r.Roll(c.SessionID())
			if err != nil {
				return err
			}
			s.record(r.Code, "rolled", map[string]interface{}{"sessionId": c.SessionID(), "roll": roll})
			return nil
		})
	case *protocol.Move:
		err = s.inRoom(c, func(r *room.Room) error {
			out, err := r.Move(c.SessionID(), m.PieceIndex, m.ToNode)
			if err != nil {
				return err
			}
			s.record(r.Code, "moved", map[string]interface{}{
				"sessionId":  c.SessionID(),
				"pieceIndex": m.PieceIndex,
				"toNode":     m.ToNode,
				"pickup":     out.PickedUpBarricade,
				"won":        out.Won,
			})
			if out.Won {
				s.log.Info().Str("room", r.Code).Str("session", c.SessionID()).Msg("game won")
			}
			return nil
		})
	case *protocol.PlaceBarricade:
		err = s.inRoom(c, func(r *room.Room) error {
			if err := r.PlaceBarricade(c.SessionID(), m.NodeID); err != nil {
				return err
			}
			s.record(r.Code, "barricade_placed", map[string]string{"sessionId": c.SessionID(), "nodeId": m.NodeID})
			return nil
		})
	case *protocol.Ping:
		s.sessions.Touch(c.SessionID())
		c.Send(protocol.NewPong())
		return
	}

	if err != nil {
		c.Send(protocol.NewError(err))
	}
}

// handleHost creates a room and seats the sender as its host
func (s *Service) handleHost(c ClientConn, m *protocol.HostRoom) error {
	s.attach(c, m.SessionID, m.Name)

	r, err := s.rooms.Create()
	if err != nil {
		s.log.Error().Err(err).Msg("room creation failed")
		return err
	}
	s.seat(c, r, m.Name)
	s.record(r.Code, "room_created", map[string]string{"host": c.SessionID()})
	s.log.Info().Str("room", r.Code).Str("session", c.SessionID()).Msg("room hosted")

	c.Send(protocol.NewRoomCode(r.Code))
	s.broadcastState(r)
	return nil
}

// handleJoin seats the sender in the room under the given code, creating
// the room when the code is unknown
func (s *Service) handleJoin(c ClientConn, m *protocol.JoinRoom) error {
	s.attach(c, m.SessionID, m.Name)

	r, created, err := s.rooms.GetOrCreate(m.Code)
	if err != nil {
		return err
	}
	if created {
		s.record(r.Code, "room_created", map[string]string{"host": c.SessionID()})
	}
	s.seat(c, r, m.Name)
	s.record(r.Code, "joined", map[string]string{"sessionId": c.SessionID(), "name": m.Name})
	s.log.Info().Str("room", r.Code).Str("session", c.SessionID()).Msg("player joined")

	s.broadcastState(r)
	return nil
}

// attach binds the connection to its session: the presented ID when there
// is one, otherwise the ID offered in HELLO.
func (s *Service) attach(c ClientConn, presented, name string) {
	id := presented
	if id == "" {
		id = c.SessionID()
	}
	sess, seq := s.sessions.Attach(id, c)
	c.SetSessionID(sess.ID)
	c.SetConnSeq(seq)
	if name != "" {
		s.sessions.Rename(sess.ID, name)
	}
}

// seat puts the attached session into r, leaving any previous room first
func (s *Service) seat(c ClientConn, r *room.Room, name string) {
	if prev := c.RoomCode(); prev != "" && prev != r.Code {
		if old, err := s.rooms.Get(prev); err == nil {
			old.Disconnect(c.SessionID())
			s.broadcastState(old)
		}
	}
	r.Join(c.SessionID(), name)
	c.SetRoomCode(r.Code)
	s.sessions.SetRoom(c.SessionID(), r.Code)
}

// inRoom runs op against the connection's current room
func (s *Service) inRoom(c ClientConn, op func(r *room.Room) error) error {
	code := c.RoomCode()
	if code == "" {
		return engine.NewRuleError(room.CodeNotInRoom, "join a room first")
	}
	r, err := s.rooms.Get(code)
	if err != nil {
		return engine.NewRuleError(room.CodeRoomNotFound, "room is gone")
	}
	if err := op(r); err != nil {
		return err
	}
	s.broadcastState(r)
	return nil
}

// broadcastState pushes a fresh snapshot to everyone in the room
func (s *Service) broadcastState(r *room.Room) {
	s.hub.BroadcastRoom(r.Code, protocol.NewState(r.Snapshot()))
}
