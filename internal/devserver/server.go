// Package devserver is an in-memory stand-in for the Arborter service, good
// enough to exercise the full client path locally: it actually verifies the
// EIP-712 login signature and the wallet signature over order payload bytes.
// Not a matching engine — accepted orders just rest in a list.
package devserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/arb/types"
)

// timestamps further than this from server time are considered stale
const maxClockSkew = 60 * time.Second

const tokenTTL = time.Hour

// Server holds the in-memory state behind the router.
type Server struct {
	mu         sync.Mutex
	chainID    uint64
	snapshot   types.ConfigurationSnapshot
	admin      string
	sessions   map[string]types.SessionToken // token -> session
	orders     map[string][]types.OpenOrder  // owner address (lower) -> resting orders
	nextID     uint64
	forcedFail *types.RemoteRejection
}

// New creates a server verifying signatures against the given chain id and
// serving the given configuration snapshot.
func New(chainID uint64, snapshot types.ConfigurationSnapshot) *Server {
	return &Server{
		chainID:  chainID,
		snapshot: snapshot,
		sessions: make(map[string]types.SessionToken),
		orders:   make(map[string][]types.OpenOrder),
		nextID:   1,
	}
}

// FailOrdersWith makes every subsequent order submission fail with the given
// rejection until cleared with an empty code. Test hook.
func (s *Server) FailOrdersWith(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == "" {
		s.forcedFail = nil
		return
	}
	s.forcedFail = &types.RemoteRejection{Code: code, Message: message}
}

// Router builds the gin handler for the five service operations.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/v1/auth/login", s.handleLogin)
	r.POST("/v1/auth/init", s.handleInitAdmin)
	r.POST("/v1/orders", s.handleSubmit)
	r.POST("/v1/orders/cancel", s.handleCancel)
	r.GET("/v1/orders/open", s.handleOpenOrders)
	r.GET("/v1/config", s.handleConfig)
	return r
}

func reject(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

func (s *Server) issueToken(address string) types.SessionToken {
	tok := types.SessionToken{
		Token:     uuid.NewString(),
		ExpiresAt: uint64(time.Now().Add(tokenTTL).Unix()),
		Address:   address,
	}
	s.mu.Lock()
	s.sessions[tok.Token] = tok
	s.mu.Unlock()
	return tok
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Address   string `json:"address"`
		Timestamp uint64 `json:"timestamp"`
		Nonce     string `json:"nonce"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	skew := time.Since(time.Unix(int64(req.Timestamp), 0))
	if skew > maxClockSkew || skew < -maxClockSkew {
		reject(c, http.StatusUnauthorized, types.CodeStaleTimestamp, "timestamp outside the accepted window")
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "signature is not valid hex")
		return
	}
	addr := common.HexToAddress(req.Address)
	digest, err := signing.AuthDigest(signing.NewDomain(s.chainID), signing.AuthMessage{
		Address:   addr,
		Timestamp: req.Timestamp,
		Nonce:     req.Nonce,
	})
	if err != nil {
		reject(c, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	recovered, err := signing.RecoverDigest(digest, sig)
	if err != nil || recovered != addr {
		reject(c, http.StatusUnauthorized, types.CodeInvalidSignature, "signature does not match the claimed address")
		return
	}
	c.JSON(http.StatusOK, s.issueToken(addr.Hex()))
}

func (s *Server) handleInitAdmin(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		reject(c, http.StatusBadRequest, "BAD_REQUEST", "address is required")
		return
	}
	s.mu.Lock()
	exists := s.admin != ""
	if !exists {
		s.admin = req.Address
	}
	s.mu.Unlock()
	if exists {
		reject(c, http.StatusConflict, types.CodeAdminExists, "an administrator already exists")
		return
	}
	c.JSON(http.StatusOK, s.issueToken(req.Address))
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req struct {
		Order     types.TradingIntent `json:"order"`
		Payload   string              `json:"payload"`
		Signature string              `json:"signatureBytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.mu.Lock()
	forced := s.forcedFail
	s.mu.Unlock()
	if forced != nil {
		reject(c, http.StatusUnprocessableEntity, forced.Code, forced.Message)
		return
	}

	payload, owner, ok := s.verifyEnvelope(c, req.Payload, req.Signature)
	if !ok {
		return
	}
	decoded, err := signing.DecodeOrder(payload)
	if err != nil {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "payload does not decode as an order")
		return
	}
	// the signed bytes are authoritative; the structured order must agree
	if decoded.MarketID != req.Order.MarketID || decoded.Side != req.Order.Side ||
		decoded.Quantity != req.Order.Quantity || decoded.Price != req.Order.Price {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "structured order disagrees with the signed payload")
		return
	}
	spender := decoded.BaseAccount
	if decoded.Side == types.SideBuy {
		spender = decoded.QuoteAccount
	}
	if owner != common.HexToAddress(spender) {
		reject(c, http.StatusUnauthorized, types.CodeInvalidSignature, "signature does not match the spending account")
		return
	}
	if _, err := marketByID(s.snapshot, decoded.MarketID); err != nil {
		reject(c, http.StatusNotFound, types.CodeMarketNotFound, err.Error())
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	key := strings.ToLower(owner.Hex())
	s.orders[key] = append(s.orders[key], types.OpenOrder{
		OrderID:  id,
		MarketID: decoded.MarketID,
		Side:     decoded.Side,
		Quantity: decoded.Quantity,
		Price:    decoded.Price,
	})
	s.mu.Unlock()

	c.JSON(http.StatusOK, types.OrderResult{Accepted: true, Order: decoded, OrderID: id})
}

func (s *Server) handleCancel(c *gin.Context) {
	var req struct {
		Order     types.CancelIntent `json:"order"`
		Payload   string             `json:"payload"`
		Signature string             `json:"signatureBytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	payload, owner, ok := s.verifyEnvelope(c, req.Payload, req.Signature)
	if !ok {
		return
	}
	decoded, err := signing.DecodeCancel(payload)
	if err != nil {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "payload does not decode as a cancel")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(owner.Hex())
	resting := s.orders[key]
	for i, o := range resting {
		if o.OrderID == decoded.OrderID {
			s.orders[key] = append(resting[:i], resting[i+1:]...)
			c.JSON(http.StatusOK, types.CancelResult{Canceled: true})
			return
		}
	}
	reject(c, http.StatusNotFound, "ORDER_NOT_FOUND", "no resting order with that id")
}

func (s *Server) handleOpenOrders(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		reject(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
		return
	}
	s.mu.Lock()
	sess, ok := s.sessions[strings.TrimPrefix(auth, prefix)]
	s.mu.Unlock()
	if !ok || sess.ExpiresAt <= uint64(time.Now().Unix()) {
		reject(c, http.StatusUnauthorized, "UNAUTHENTICATED", "unknown or expired token")
		return
	}
	s.mu.Lock()
	orders := append([]types.OpenOrder(nil), s.orders[strings.ToLower(sess.Address)]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot)
}

// verifyEnvelope decodes the hex payload and signature and recovers the
// signing address through the personal-message path. Writes the rejection
// itself when verification fails.
func (s *Server) verifyEnvelope(c *gin.Context, payloadHex, sigHex string) ([]byte, common.Address, bool) {
	payload, err := hexutil.Decode(payloadHex)
	if err != nil {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "payload is not valid hex")
		return nil, common.Address{}, false
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		reject(c, http.StatusBadRequest, types.CodeInvalidSignature, "signature is not valid hex")
		return nil, common.Address{}, false
	}
	owner, err := signing.RecoverMessage(payload, sig)
	if err != nil {
		reject(c, http.StatusUnauthorized, types.CodeInvalidSignature, "signature does not recover")
		return nil, common.Address{}, false
	}
	return payload, owner, true
}

func marketByID(snap types.ConfigurationSnapshot, id string) (*types.Market, error) {
	for i := range snap.Markets {
		if snap.Markets[i].ID == id {
			return &snap.Markets[i], nil
		}
	}
	return nil, &types.ResolutionError{Kind: "market", Requested: id}
}

// Fixture returns the snapshot used by the dev server when none is supplied:
// two anvil chains and two markets crossing them.
func Fixture() types.ConfigurationSnapshot {
	return types.ConfigurationSnapshot{
		Chains: []types.Chain{
			{
				Network: "anvil-1",
				ChainID: 84531,
				Tokens: map[string]types.Token{
					"USDC": {Symbol: "USDC", Address: "0x1111111111111111111111111111111111111111", Decimals: 6},
					"WETH": {Symbol: "WETH", Address: "0x2222222222222222222222222222222222222222", Decimals: 18},
				},
			},
			{
				Network: "anvil-2",
				ChainID: 84532,
				Tokens: map[string]types.Token{
					"USDT": {Symbol: "USDT", Address: "0x3333333333333333333333333333333333333333", Decimals: 6},
				},
			},
		},
		Markets: []types.Market{
			{
				ID:    "A1USDC-A2USDT",
				Base:  types.MarketLeg{Network: "anvil-1", Symbol: "USDC"},
				Quote: types.MarketLeg{Network: "anvil-2", Symbol: "USDT"},
			},
			{
				ID:    "A1WETH-A2USDT",
				Base:  types.MarketLeg{Network: "anvil-1", Symbol: "WETH"},
				Quote: types.MarketLeg{Network: "anvil-2", Symbol: "USDT"},
			},
		},
	}
}
