package service

import (
	"log"
	"time"

	"context"

	"auto_trader/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// WSFeed — вебсокет-клиент фида котировок. Формат кадров общий:
// {"security_id":"...","ask":...,"bid":...,"last":...,"ts":<unix_ms>}.
type WSFeed struct {
	url    string
	dialer *websocket.Dialer
}

// NewWSFeed instance
func NewWSFeed(url string) *WSFeed {
	return &WSFeed{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

type wsFrame struct {
	SecurityID string `json:"security_id"`
	Ask        int64  `json:"ask"`
	Bid        int64  `json:"bid"`
	Last       int64  `json:"last"`
	TS         int64  `json:"ts"`
}

// Stream — один сокет на весь список бумаг, реконнект при обрыве.
func (f *WSFeed) Stream(ctx context.Context, securityIDs []string) <-chan models.Quote {
	ch := make(chan models.Quote)
	go func() {
		defer close(ch)

		if len(securityIDs) == 0 {
			return
		}

		for {
			if ctx.Err() != nil {
				return
			}

			log.Printf("[WS] connect %s, %d securities", f.url, len(securityIDs))
			conn, _, err := f.dialer.Dial(f.url, nil)
			if err != nil {
				log.Printf("[WS] dial error: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			sub := map[string]any{
				"op":         "subscribe",
				"securities": securityIDs,
			}
			raw, _ := sonic.Marshal(sub)
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Printf("[WS] subscribe error: %v", err)
				_ = conn.Close()
				continue
			}

			// keepalive ping, иначе фид рвёт соединение по тишине
			connDone := make(chan struct{})
			go func() {
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-connDone:
						return
					case <-t.C:
						_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ping"}`))
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					log.Printf("[WS] read error: %v", err)
					_ = conn.Close()
					close(connDone)
					break
				}

				var frame wsFrame
				if err := sonic.Unmarshal(msg, &frame); err != nil {
					continue
				}
				if frame.SecurityID == "" || frame.Last <= 0 {
					continue
				}

				at := time.UnixMilli(frame.TS)
				if frame.TS <= 0 {
					at = time.Now()
				}

				q := models.Quote{
					SecurityID: frame.SecurityID,
					Ask:        frame.Ask,
					Bid:        frame.Bid,
					Last:       frame.Last,
					At:         at,
				}
				select {
				case <-ctx.Done():
					_ = conn.Close()
					return
				case ch <- q:
				}
			}
		}
	}()
	return ch
}
