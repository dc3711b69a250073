package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
)

// wsUpgrader: WebSocket 연결 업그레이드용 설정입니다.
// 공개 딜 피드는 읽기 전용 브로드캐스트이므로 Origin 검증은 느슨하게 설정합니다.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dealEvent: 라이브 피드로 전송되는 딜 이벤트
type dealEvent struct {
	Type string       `json:"type"`
	Deal *domain.Deal `json:"deal"`
}

// wsClient: 연결된 구독자 한 명
type wsClient struct {
	conn *websocket.Conn
	send chan dealEvent
}

// DealHub: 새 딜을 WebSocket 구독자들에게 중계하는 허브입니다.
// 느린 구독자는 전송 버퍼가 가득 차면 연결을 끊습니다.
type DealHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	logger  *slog.Logger
}

// NewDealHub: 라이브 딜 피드 허브를 생성합니다.
func NewDealHub(logger *slog.Logger) *DealHub {
	return &DealHub{
		clients: make(map[*wsClient]struct{}),
		logger:  logger,
	}
}

// BroadcastDeal: 새 딜을 모든 구독자에게 전송합니다. (딜 동기화 잡에서 호출)
func (hub *DealHub) BroadcastDeal(deal *domain.Deal) {
	event := dealEvent{Type: "deal", Deal: deal}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for client := range hub.clients {
		select {
		case client.send <- event:
		default:
			// 버퍼가 가득 찬 구독자는 수신 루프가 정리한다
		}
	}
}

// ClientCount: 현재 구독자 수
func (hub *DealHub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// ServeWS: WebSocket 연결을 수락하고 구독자로 등록합니다.
func (hub *DealHub) ServeWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan dealEvent, constants.WebSocketConfig.SendBufferSize),
	}

	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	count := len(hub.clients)
	hub.mu.Unlock()

	hub.logger.Debug("ws_client_connected", slog.Int("clients", count))

	go hub.writeLoop(client)
	hub.readLoop(client)
}

// writeLoop: 이벤트 전송과 주기적 ping을 담당합니다.
func (hub *DealHub) writeLoop(client *wsClient) {
	ticker := time.NewTicker(constants.WebSocketConfig.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if err := client.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop: 클라이언트 메시지를 소비하고 연결 종료를 감지합니다.
func (hub *DealHub) readLoop(client *wsClient) {
	defer func() {
		hub.mu.Lock()
		delete(hub.clients, client)
		hub.mu.Unlock()
		// send 채널은 닫지 않는다: 브로드캐스트 고루틴이 동시에 쓸 수 있다.
		// 연결이 닫히면 writeLoop는 다음 쓰기에서 에러로 종료된다.
		_ = client.conn.Close()
		hub.logger.Debug("ws_client_disconnected")
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
