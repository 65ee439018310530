package aeso

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	drepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/util"

	"github.com/gorilla/websocket"
)

// Client implements an ObservationStream backed by the AESO market data
// WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new AESO ObservationStream. Channels name the feed topics to
// subscribe to, typically "pool-price" and "current-supply-demand".
func New(apiKey, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.ObservationStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?api-key=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("aeso connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("aeso: connected")
	return nil
}

// Subscribe subscribes to the configured feed channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("aeso not connected")
	}
	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("aeso: subscribed %s", ch)
	}
	return nil
}

type feedRecord struct {
	BeginDT    string   `json:"begin_datetime_utc"`
	PoolPrice  *float64 `json:"pool_price"`
	AIL        float64  `json:"alberta_internal_load"`
	Generation struct {
		Wind  float64 `json:"wind"`
		Solar float64 `json:"solar"`
		Gas   float64 `json:"gas"`
		Other float64 `json:"other"`
	} `json:"generation"`
	Temperature struct {
		Calgary  *float64 `json:"calgary"`
		Edmonton *float64 `json:"edmonton"`
	} `json:"temperature"`
}

type feedMessage struct {
	Type    string       `json:"type"`
	Channel string       `json:"channel"`
	Data    []feedRecord `json:"data"`
}

// Read streams observations and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.HistoricalObservation, <-chan error) {
	obs := make(chan *models.HistoricalObservation, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(obs)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("aeso conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("aeso read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-data frames
					continue
				}
				if m.Type != "update" {
					continue
				}
				for _, d := range m.Data {
					o, err := d.toObservation()
					if err != nil {
						continue
					}
					select {
					case obs <- o:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return obs, errs
}

func (r feedRecord) toObservation() (*models.HistoricalObservation, error) {
	ts, ok := util.ParseTime(r.BeginDT)
	if !ok {
		return nil, fmt.Errorf("bad begin_datetime_utc %q", r.BeginDT)
	}
	return &models.HistoricalObservation{
		Timestamp:           ts.UTC(),
		PoolPrice:           r.PoolPrice,
		AILMW:               r.AIL,
		GenerationWind:      r.Generation.Wind,
		GenerationSolar:     r.Generation.Solar,
		GenerationGas:       r.Generation.Gas,
		GenerationOther:     r.Generation.Other,
		TemperatureCalgary:  r.Temperature.Calgary,
		TemperatureEdmonton: r.Temperature.Edmonton,
	}, nil
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
