package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/jaehyuk-c/voiceduel-client/internal/battle"
	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/pkg/types"
)

const writeTimeout = 3 * time.Second

// Client is the network event adapter: it decodes server messages into
// battle events for the duel actor and writes attack submissions back. It
// owns no game state.
type Client struct {
	conn *websocket.Conn
	log  *zap.Logger
}

func Dial(ctx context.Context, url string, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial battle server: %w", err)
	}
	return &Client{conn: conn, log: log}, nil
}

func (c *Client) Close() {
	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// Run reads server messages until the connection or context ends, posting
// decoded events to the duel inbox in arrival order.
func (c *Client) Run(ctx context.Context, inbox chan<- duel.Msg) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			// Treat clean close/going-away as normal:
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read battle server: %w", err)
		}

		var sm types.ServerMessage
		if err := json.Unmarshal(data, &sm); err != nil {
			c.log.Warn("bad server message", zap.Error(err))
			continue
		}

		ev, ok := toBattleEvent(sm)
		if !ok {
			c.log.Warn("unknown server message", zap.String("type", sm.Type))
			continue
		}

		select {
		case inbox <- duel.FromServer{Event: ev}:
		case <-ctx.Done():
			return nil
		}
	}
}

// SubmitAttack sends the resolved attack for the local turn.
func (c *Client) SubmitAttack(ctx context.Context, damage types.DamagePayload, ultimateUsed bool) error {
	msg := types.ClientMessage{
		Type:           types.MsgAttackSubmitted,
		Damage:         &damage,
		IsUltimateUsed: ultimateUsed,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode attack: %w", err)
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("write attack: %w", err)
	}
	return nil
}

func toBattleEvent(m types.ServerMessage) (battle.Event, bool) {
	switch m.Type {
	case types.MsgTurnChanged:
		return battle.Event{Type: battle.EvtTurnChanged, LocalTurn: m.IsLocalTurn}, true

	case types.MsgDamageResolved:
		side, ok := parseSide(m.TargetSide)
		if !ok {
			return battle.Event{}, false
		}
		grade, ok := battle.ParseGrade(m.Grade)
		if !ok {
			return battle.Event{}, false
		}
		return battle.Event{
			Type:         battle.EvtDamageResolved,
			Target:       side,
			Amount:       m.Amount,
			Grade:        grade,
			Critical:     m.IsCritical,
			UltimateUsed: m.IsUltimateUsed,
			WinnerID:     m.WinnerID,
			LoserID:      m.LoserID,
			EloChange:    m.EloChange,
		}, true

	case types.MsgBattleResult:
		if m.WinnerID == "" {
			return battle.Event{}, false
		}
		return battle.Event{
			Type:      battle.EvtBattleResult,
			WinnerID:  m.WinnerID,
			LoserID:   m.LoserID,
			EloChange: m.EloChange,
		}, true

	default:
		return battle.Event{}, false
	}
}

func parseSide(side string) (battle.Side, bool) {
	switch side {
	case "local":
		return battle.SideLocal, true
	case "remote":
		return battle.SideRemote, true
	default:
		return "", false
	}
}
