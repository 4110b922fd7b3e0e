package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/service"
)

// ListingHandler serves the marketplace endpoints: browsing, selling,
// buying, repricing and withdrawing listings.
type ListingHandler struct {
	listings *service.ListingService
	logger   *slog.Logger
}

func NewListingHandler(listings *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		logger:   logger,
	}
}

// adView is a listing as the page renders it. Price is the display text
// ("5 TON"); OriginalPrice is the bare number the page sorts and edits by.
type adView struct {
	ID            int64       `json:"id"`
	Collection    string      `json:"collection"`
	Model         string      `json:"model"`
	Number        string      `json:"number"`
	Price         string      `json:"price"`
	Currency      string      `json:"currency"`
	OriginalPrice json.Number `json:"original_price"`
	CreatedAt     string      `json:"created_at"`
}

// marketAdView adds the seller to adView for the public market list.
type marketAdView struct {
	adView
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func newAdView(ad *model.Advertisement) adView {
	return adView{
		ID:            ad.ID,
		Collection:    ad.Collection,
		Model:         ad.Model,
		Number:        ad.Number,
		Price:         ad.DisplayPrice(),
		Currency:      ad.Currency,
		OriginalPrice: json.Number(ad.Price.String()),
		CreatedAt:     ad.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func newMarketAdView(ad *model.Advertisement) marketAdView {
	return marketAdView{
		adView:   newAdView(ad),
		UserID:   ad.UserID,
		Username: ad.Username,
	}
}

// listingRequest is the body of the lifecycle endpoints.
type listingRequest struct {
	AdID     flexString `json:"ad_id"`
	UserID   flexString `json:"user_id"`
	NewPrice flexString `json:"new_price"`
}

// HandleGetActiveAds lists active listings, newest first.
//
// HTTP: GET /get_active_ads?collection=PUCCA&model=PUCCA%20Moods
//
// model is ignored unless collection is also given.
func (h *ListingHandler) HandleGetActiveAds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ads, err := h.listings.ListActive(r.Context(), q.Get("collection"), q.Get("model"))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]marketAdView, 0, len(ads))
	for i := range ads {
		views = append(views, newMarketAdView(&ads[i]))
	}
	writeOK(w, views)
}

// HandleGetUserAds lists the caller's own active listings.
//
// HTTP: POST /get_user_ads
// REQUEST BODY: {"user_id": "123"}
func (h *ListingHandler) HandleGetUserAds(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ads, err := h.listings.ListByOwner(r.Context(), req.UserID.String())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]adView, 0, len(ads))
	for i := range ads {
		views = append(views, newAdView(&ads[i]))
	}
	writeOK(w, views)
}

// HandleSaveAd creates a listing.
//
// HTTP: POST /save_ad
// REQUEST BODY:
//
//	{"user_id": "u1", "username": "annlee", "collection": "PUCCA",
//	 "model": "PUCCA Moods", "number": "12", "price": "5", "currency": "TON"}
//
// created_at is optional (RFC 3339) and defaults to now.
func (h *ListingHandler) HandleSaveAd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     flexString `json:"user_id"`
		Username   string     `json:"username"`
		Collection string     `json:"collection"`
		Model      string     `json:"model"`
		Number     flexString `json:"number"`
		Price      flexString `json:"price"`
		Currency   string     `json:"currency"`
		CreatedAt  string     `json:"created_at"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	// The page always sends both. Bot and tests go through the service,
	// which defaults the currency.
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, apperror.ValidationFailed("username", "username is required"))
		return
	}
	if strings.TrimSpace(req.Currency) == "" {
		writeError(w, apperror.ValidationFailed("currency", "currency is required"))
		return
	}

	ad, err := h.listings.Create(r.Context(), service.CreateListingInput{
		UserID:     req.UserID.String(),
		Username:   strings.TrimSpace(req.Username),
		Collection: req.Collection,
		Model:      req.Model,
		Number:     req.Number.String(),
		Price:      req.Price.String(),
		Currency:   req.Currency,
		CreatedAt:  req.CreatedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, newMarketAdView(ad))
}

// HandleDeleteAd withdraws one of the caller's listings.
//
// HTTP: POST /delete_ad
// REQUEST BODY: {"ad_id": 4, "user_id": "u1"}
func (h *ListingHandler) HandleDeleteAd(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.listings.Delete(r.Context(), req.AdID.String(), req.UserID.String()); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, nil)
}

// HandleUpdateAdPrice reprices one of the caller's listings.
//
// HTTP: POST /update_ad_price
// REQUEST BODY: {"ad_id": 4, "user_id": "u1", "new_price": "7.5"}
func (h *ListingHandler) HandleUpdateAdPrice(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := h.listings.UpdatePrice(r.Context(), req.AdID.String(), req.UserID.String(), req.NewPrice.String())
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, nil)
}

// HandleBuyAd marks a listing as sold to the caller. No funds move here;
// the buyer and seller settle in their wallets.
//
// HTTP: POST /buy_ad
// REQUEST BODY: {"ad_id": 4, "user_id": "u2"}
func (h *ListingHandler) HandleBuyAd(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.listings.Buy(r.Context(), req.AdID.String(), req.UserID.String()); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]string{"message": "purchase completed"})
}
