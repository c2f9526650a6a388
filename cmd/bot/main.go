package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"tokenfield/internal/protocol"
	"tokenfield/internal/sim/encoding"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "client name")
		steps = flag.Int("steps", 20, "steps to walk before exiting")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	taken := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s seed=%d win_threshold=%d", w.SessionID, w.WorldParams.Seed, w.WorldParams.WinThreshold)

		case protocol.TypeState:
			var state protocol.StateMsg
			if err := json.Unmarshal(msg, &state); err != nil {
				continue
			}
			for _, ev := range state.Events {
				logger.Printf("event %s cell=%v value=%d", ev.Kind, ev.Cell, ev.Value)
			}
			if taken >= *steps {
				logger.Printf("done after %d steps, holding=%d", taken, state.Player.Holding)
				return
			}
			taken++
			if err := conn.WriteJSON(nextAct(&state)); err != nil {
				logger.Fatalf("send ACT: %v", err)
			}

		case protocol.TypeAck:
			var ack protocol.AckMsg
			if err := json.Unmarshal(msg, &ack); err != nil {
				continue
			}
			logger.Printf("ACK %s accepted=%v code=%s", ack.AckFor, ack.Accepted, ack.Code)
		}
	}
}

// nextAct interacts with the nearest adjacent cell the player can act on
// (a token to pick up, or any cell when holding), then keeps walking east.
func nextAct(state *protocol.StateMsg) protocol.ActMsg {
	values, err := encoding.DecodeRLE(state.View.Data)
	if err != nil {
		values = nil
	}
	pi, pj := state.Player.Cell[0], state.Player.Cell[1]
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			v := viewValue(&state.View, values, pi+di, pj+dj)
			actionable := (state.Player.Holding == 0 && v > 0) ||
				(state.Player.Holding > 0 && (v == 0 || v == state.Player.Holding))
			if actionable {
				return act(protocol.InstantReq{
					ID:   fmt.Sprintf("I%d", state.Seq),
					Kind: protocol.InstInteract,
					Cell: [2]int{pi + di, pj + dj},
				})
			}
		}
	}
	return act(protocol.InstantReq{
		ID:   fmt.Sprintf("I%d", state.Seq),
		Kind: protocol.InstMove,
		DI:   1,
	})
}

func viewValue(v *protocol.ViewWindow, values []int64, i, j int) int64 {
	ri := i - v.Origin[0]
	rj := j - v.Origin[1]
	if ri < 0 || ri >= v.W || rj < 0 || rj >= v.H {
		return 0
	}
	idx := ri*v.H + rj
	if idx >= len(values) {
		return 0
	}
	return values[idx]
}

func act(instants ...protocol.InstantReq) protocol.ActMsg {
	return protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Instants:        instants,
	}
}
