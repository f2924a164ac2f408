package market

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/marketplace/backend/internal/model/market"
	marketService "github.com/zhouzirui/marketplace/backend/internal/service/market"
	"github.com/zhouzirui/marketplace/backend/internal/validation"
	"github.com/zhouzirui/marketplace/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Handler serves the users, orders and offers collections.
type Handler struct {
	svc *marketService.Service
}

// New 创建市场处理器
func New(svc *marketService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /users, /orders and /offers with their item routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	mount(r, &resource[market.User]{
		coll:      h.svc.Users(),
		validator: validation.MustNew(market.CollectionUsers, validation.UserFields),
		label:     "User",
		setID:     func(u *market.User, id int64) { u.ID = id },
	})
	mount(r, &resource[market.Order]{
		coll:      h.svc.Orders(),
		validator: validation.MustNew(market.CollectionOrders, validation.OrderFields),
		label:     "Order",
		setID:     func(o *market.Order, id int64) { o.ID = id },
	})
	mount(r, &resource[market.Offer]{
		coll:      h.svc.Offers(),
		validator: validation.MustNew(market.CollectionOffers, validation.OfferFields),
		label:     "Offer",
		setID:     func(o *market.Offer, id int64) { o.ID = id },
	})
}

// resource is the collection + item handler pair for one record type.
type resource[T market.Record] struct {
	coll      *marketService.Collection[T]
	validator *validation.Validator
	label     string
	setID     func(*T, int64)
}

func mount[T market.Record](r chi.Router, res *resource[T]) {
	r.Route("/"+res.coll.Name(), func(cr chi.Router) {
		cr.Get("/", res.handleList)
		cr.Post("/", res.handleCreate)
		cr.Get("/{id}", res.handleGet)
		cr.Put("/{id}", res.handleReplace)
		cr.Delete("/{id}", res.handleDelete)
	})
}

func (res *resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := res.coll.List(r.Context())
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (res *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	var rec T
	if err := res.validator.DecodeCreate(body, &rec); err != nil {
		utils.RespondErr(w, err)
		return
	}
	if err := res.coll.Create(r.Context(), rec); err != nil {
		utils.RespondErr(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": res.label + " Created",
		"id":      rec.RecordID(),
	})
}

func (res *resource[T]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	rec, err := res.coll.Get(r.Context(), id)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

func (res *resource[T]) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	var rec T
	if err := res.validator.DecodeReplace(body, id, &rec); err != nil {
		utils.RespondErr(w, err)
		return
	}
	res.setID(&rec, id)

	if err := res.coll.Replace(r.Context(), rec); err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondNoContent(w, res.label+" Updated")
}

func (res *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	if err := res.coll.Delete(r.Context(), id); err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondNoContent(w, res.label+" Deleted")
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &market.ValidationError{Field: "id", Message: fmt.Sprintf("id must be an integer, got %q", raw)}
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &market.ValidationError{Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}
