package world

import (
	"context"
	"encoding/json"
	"fmt"

	"tokenfield/internal/protocol"
	"tokenfield/internal/sim/encoding"
	"tokenfield/internal/sim/grid"
)

// ActionEnvelope is one client ACT message tagged with its session.
type ActionEnvelope struct {
	SessionID string
	Act       protocol.ActMsg
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	SessionID string
	Welcome   protocol.WelcomeMsg
}

// Run drains the world's channels on a single goroutine. Each envelope is
// processed to completion before the next, so no state is ever observed torn
// and movement-source detach takes effect before any later event.
func (w *World) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case env := <-w.inbox:
			w.handleAct(env)
			w.broadcastState()
		}
	}
}

func (w *World) handleJoin(req JoinRequest) {
	w.nextSession++
	id := fmt.Sprintf("S%d", w.nextSession)
	w.sessions[id] = req.Out
	w.log.Printf("session %s joined (%s)", id, req.Name)

	req.Resp <- JoinResponse{
		SessionID: id,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       id,
			WorldParams:     w.Params(),
		},
	}
	// Seed the new session with the current state.
	w.sendState(id, req.Out)
}

func (w *World) handleLeave(id string) {
	delete(w.sessions, id)
}

func (w *World) handleAct(env ActionEnvelope) {
	for _, inst := range env.Act.Instants {
		switch inst.Kind {
		case protocol.InstMove:
			if !validStep(inst.DI, inst.DJ) {
				w.reject(env.SessionID, inst.ID, protocol.ErrBadStep, "step must be one cell on one axis")
				continue
			}
			w.HandleMove(inst.DI, inst.DJ)
		case protocol.InstInteract:
			w.Interact(grid.CellID{I: inst.Cell[0], J: inst.Cell[1]})
		case protocol.InstSetMode:
			if !protocol.KnownMode(inst.Mode) {
				w.reject(env.SessionID, inst.ID, protocol.ErrBadMode, "unknown movement mode")
				continue
			}
			w.SetMode(inst.Mode)
		case protocol.InstPos:
			w.HandleReading(grid.Position{Lat: inst.Lat, Lng: inst.Lng}, inst.Error)
		case protocol.InstReset:
			w.Reset()
		default:
			w.reject(env.SessionID, inst.ID, protocol.ErrBadRequest, "unknown instant type")
		}
	}
}

func (w *World) reject(sessionID, instantID, code, msg string) {
	out, ok := w.sessions[sessionID]
	if !ok {
		return
	}
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          instantID,
		Accepted:        false,
		Code:            code,
		Message:         msg,
	})
	if err != nil {
		return
	}
	w.deliver(sessionID, out, b)
}

// buildState renders the current world for clients, including the visible
// window around the player and any events accumulated since the last push.
func (w *World) buildState() protocol.StateMsg {
	w.seq++
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Seq:             w.seq,
		Player: protocol.PlayerState{
			Cell:    [2]int{w.PlayerCell().I, w.PlayerCell().J},
			Pos:     [2]float64{w.player.Pos.Lat, w.player.Pos.Lng},
			Holding: w.player.Holding,
		},
		Mode:   w.mode,
		View:   w.View(w.PlayerCell(), w.cfg.ViewRadius),
		Events: w.events,
	}
	w.events = nil
	return msg
}

// View answers the visible-range query: effective values for the square of
// cells within radius of center, row-major with J fastest, RLE-encoded.
func (w *World) View(center grid.CellID, radius int) protocol.ViewWindow {
	side := 2*radius + 1
	values := make([]int64, 0, side*side)
	for i := center.I - radius; i <= center.I+radius; i++ {
		for j := center.J - radius; j <= center.J+radius; j++ {
			values = append(values, w.ValueAt(grid.CellID{I: i, J: j}))
		}
	}
	return protocol.ViewWindow{
		Origin:   [2]int{center.I - radius, center.J - radius},
		W:        side,
		H:        side,
		Encoding: "RLE",
		Data:     encoding.EncodeRLE(values),
	}
}

func (w *World) broadcastState() {
	msg := w.buildState()
	b, err := json.Marshal(msg)
	if err != nil {
		w.log.Printf("marshal state: %v", err)
		return
	}
	for id, out := range w.sessions {
		w.deliver(id, out, b)
	}
}

func (w *World) sendState(id string, out chan []byte) {
	b, err := json.Marshal(w.buildState())
	if err != nil {
		w.log.Printf("marshal state: %v", err)
		return
	}
	w.deliver(id, out, b)
}

// deliver never blocks the loop: a session that cannot keep up is dropped.
func (w *World) deliver(id string, out chan []byte, b []byte) {
	select {
	case out <- b:
	default:
		w.log.Printf("session %s too slow, dropping", id)
		delete(w.sessions, id)
		close(out)
	}
}
