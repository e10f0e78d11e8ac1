package intake

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
	"github.com/oklog/ulid/v2"
)

const defaultDepth = 20

// Handler serves the intake and read API.
type Handler struct {
	publisher consensusv1.Publisher
	books     orderbookv1.SnapshotStore
	positions positionv1.Repository
	checker   orderv1.Validator
	markets   map[string]bool
	logger    logger.Interface

	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler for the given markets. checker runs the
// stateless order checks before an intent is forwarded.
func NewHandler(
	publisher consensusv1.Publisher,
	books orderbookv1.SnapshotStore,
	positions positionv1.Repository,
	checker orderv1.Validator,
	markets []string,
	log logger.Interface,
) *Handler {
	served := make(map[string]bool, len(markets))
	for _, m := range markets {
		served[m] = true
	}
	return &Handler{
		publisher: publisher,
		books:     books,
		positions: positions,
		checker:   checker,
		markets:   served,
		logger:    log,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}
}

// PlaceOrder handles POST /v1/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	var intent orderv1.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		code, body := bindError(err)
		c.JSON(code, body)
		return
	}
	if intent.OrderID == "" {
		intent.OrderID = h.newID()
	}
	if err := h.servesMarket(intent.MarketID); err != nil {
		h.fail(c, err)
		return
	}

	// sequence 0: the order has not been sequenced yet
	if err := h.checker.Check(intent.ToOrder(0), h.now()); err != nil {
		h.fail(c, err)
		return
	}

	seq, err := h.publish(c, &consensusv1.Payload{Type: consensusv1.PayloadOrder, MarketID: intent.MarketID, Order: &intent})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{OrderID: intent.OrderID, MarketID: intent.MarketID, Sequence: seq})
}

// CancelOrder handles POST /v1/orders/cancel
func (h *Handler) CancelOrder(c *gin.Context) {
	var cancel orderv1.Cancel
	if err := c.ShouldBindJSON(&cancel); err != nil {
		code, body := bindError(err)
		c.JSON(code, body)
		return
	}
	if err := h.servesMarket(cancel.MarketID); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.checker.CheckCancel(&cancel); err != nil {
		h.fail(c, err)
		return
	}

	seq, err := h.publish(c, &consensusv1.Payload{Type: consensusv1.PayloadCancel, MarketID: cancel.MarketID, Cancel: &cancel})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{OrderID: cancel.OrderID, MarketID: cancel.MarketID, Sequence: seq})
}

// CloseBatch handles POST /v1/markets/:market/boundary
func (h *Handler) CloseBatch(c *gin.Context) {
	market := c.Param("market")
	if err := h.servesMarket(market); err != nil {
		h.fail(c, err)
		return
	}

	var req BoundaryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			code, body := bindError(err)
			c.JSON(code, body)
			return
		}
	}

	seq, err := h.publish(c, &consensusv1.Payload{
		Type:     consensusv1.PayloadBatchBoundary,
		MarketID: market,
		Boundary: &consensusv1.Boundary{Reason: req.Reason},
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{MarketID: market, Sequence: seq})
}

// GetBook handles GET /v1/markets/:market/book
func (h *Handler) GetBook(c *gin.Context) {
	market := c.Param("market")
	if err := h.servesMarket(market); err != nil {
		h.fail(c, err)
		return
	}

	var q BookQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		code, body := bindError(err)
		c.JSON(code, body)
		return
	}
	if q.Depth == 0 {
		q.Depth = defaultDepth
	}

	snap, err := h.books.Load(c.Request.Context(), market)
	if err != nil {
		h.fail(c, err)
		return
	}
	if snap == nil {
		h.fail(c, errors.NewErrorDetails("no committed book for "+market, string(errors.GeneralNotFoundError), "market"))
		return
	}

	snap.Bids = truncate(snap.Bids, q.Depth)
	snap.Asks = truncate(snap.Asks, q.Depth)
	c.JSON(http.StatusOK, BookResponse{Snapshot: snap, BestBid: snap.BestBid(), BestAsk: snap.BestAsk()})
}

// ListPositions handles GET /v1/accounts/:account/positions
func (h *Handler) ListPositions(c *gin.Context) {
	account := c.Param("account")
	ctx := util.WithAccountID(c.Request.Context(), account)

	positions, err := h.positions.ListByAccount(ctx, account)
	if err != nil {
		h.fail(c, err)
		return
	}

	marks := make(map[string]*orderbookv1.Snapshot)
	out := make([]PositionResponse, 0, len(positions))
	for _, p := range positions {
		snap, ok := marks[p.MarketID]
		if !ok {
			snap, err = h.books.Load(ctx, p.MarketID)
			if err != nil {
				h.logger.WarnContext(ctx, "mark snapshot unavailable",
					logger.Field{Key: "market_id", Value: p.MarketID},
					logger.Field{Key: "error", Value: err.Error()},
				)
			}
			marks[p.MarketID] = snap
		}

		resp := PositionResponse{Position: p, AvgEntryPrice: p.AvgEntryPrice()}
		if snap != nil {
			resp.UnrealizedPnl = p.Unrealized(snap.BestBid(), snap.BestAsk())
			resp.MarkSequence = snap.Sequence
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) servesMarket(market string) error {
	if !h.markets[market] {
		return errors.NewRejectReason(errors.RejectUnknownMarket, "marketId", "market %q is not served", market)
	}
	return nil
}

func (h *Handler) publish(c *gin.Context, payload *consensusv1.Payload) (int64, error) {
	ctx := util.WithMarketID(c.Request.Context(), payload.MarketID)

	seq, err := h.publisher.Publish(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "publish " + string(payload.Type)})
		return 0, errors.NewErrorDetails(err.Error(), string(errors.TransientReadFailure), "consensus")
	}

	h.logger.InfoContext(ctx, "Forwarded to consensus log",
		logger.Field{Key: "type", Value: payload.Type},
		logger.Field{Key: "sequence", Value: seq},
	)
	return seq, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	code, body := mapError(err)
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), err, logger.Field{Key: "path", Value: c.FullPath()})
	}
	c.JSON(code, body)
}

func truncate(levels []orderbookv1.Level, depth int) []orderbookv1.Level {
	if len(levels) > depth {
		return levels[:depth]
	}
	return levels
}
