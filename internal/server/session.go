package server

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rewired-gh/arbdash/internal/logger"
	"github.com/rewired-gh/arbdash/internal/metrics"
	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/shell"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

// clientMessage is one browser event.
type clientMessage struct {
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`
	Name     string `json:"name,omitempty"`
	Value    string `json:"value,omitempty"`
}

// handleSession upgrades to a websocket and runs one shell for the tab
// until either side goes away.
func (s *Server) handleSession(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Warn("Websocket upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()
	log := logger.With(logger.Fields{"session": id, "remote": c.ClientIP()})

	ctx, cancel := s.sessionContext()
	defer cancel()

	sh := shell.New(id, s.opts)
	go sh.Run(ctx)

	s.sessions.Add(1)
	metrics.SessionOpened()
	log.Info("Session opened")
	defer func() {
		s.sessions.Add(-1)
		metrics.SessionClosed()
		log.Info("Session closed")
	}()

	// The writer owns conn and closes it, which also unblocks the reader.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeFrames(conn, sh, log)
		cancel()
		conn.Close()
	}()

	readMessages(conn, sh, log)
	cancel()
	<-writerDone
}

// readMessages forwards browser events to the shell until the connection
// fails or the shell stops.
func readMessages(conn *websocket.Conn, sh *shell.Shell, log *logrus.Entry) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Websocket read failed")
			}
			return
		}

		var err error
		switch msg.Type {
		case "navigate":
			err = sh.Navigate(models.ParseLocation(msg.Location))
		case "field":
			err = sh.EditField(msg.Name, msg.Value)
		case "submit":
			err = sh.Submit()
		default:
			log.Warnf("Ignoring message of type %q", msg.Type)
		}
		if errors.Is(err, shell.ErrClosed) {
			return
		}
	}
}

// writeFrames is the only writer on conn. It returns when the shell stops
// publishing or a write fails.
func writeFrames(conn *websocket.Conn, sh *shell.Shell, log *logrus.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-sh.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")) //nolint:errcheck
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				log.WithError(err).Warn("Websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
