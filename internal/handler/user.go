package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/service"
)

// registrationDateLayout is how the profile screen shows registration dates.
const registrationDateLayout = "2006-01-02 15:04:05"

// UserHandler serves the profile endpoints of the mini-app.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// userRequest is the body shared by the endpoints that only need a user id.
type userRequest struct {
	UserID flexString `json:"user_id"`
}

// profileView is the JSON shape of a user profile.
type profileView struct {
	Name             string      `json:"name"`
	Surname          string      `json:"surname"`
	Username         string      `json:"username"`
	Deals            int         `json:"numofdeals"`
	Wallet           string      `json:"wallet"`
	Positive         int         `json:"pos"`
	Negative         int         `json:"neg"`
	Volume           json.Number `json:"volume"`
	RegistrationDate string      `json:"registration_date"`
}

func newProfileView(u *model.User) profileView {
	return profileView{
		Name:             u.Name,
		Surname:          u.Surname,
		Username:         u.Username,
		Deals:            u.Deals,
		Wallet:           u.Wallet,
		Positive:         u.Positive,
		Negative:         u.Negative,
		Volume:           json.Number(u.Volume.String()),
		RegistrationDate: u.RegistrationDate.UTC().Format(registrationDateLayout),
	}
}

type statsView struct {
	Deals    int         `json:"deals"`
	Positive int         `json:"positive"`
	Negative int         `json:"negative"`
	Volume   json.Number `json:"volume"`
}

// HandleGetUserData returns the caller's profile.
//
// HTTP: POST /get_user_data
// REQUEST BODY: {"user_id": "123"}
func (h *UserHandler) HandleGetUserData(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.users.GetUser(r.Context(), req.UserID.String())
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, newProfileView(u))
}

// HandleUpdateWallet stores the wallet address the page connected.
//
// HTTP: POST /update_user_wallet
// REQUEST BODY: {"user_id": "123", "wallet": "UQ..."}
func (h *UserHandler) HandleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID flexString `json:"user_id"`
		Wallet string     `json:"wallet"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.UpdateWallet(r.Context(), req.UserID.String(), req.Wallet); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, nil)
}

// HandleGetRegistrationDate returns when the user first opened the mini-app.
//
// HTTP: POST /get_registration_date
func (h *UserHandler) HandleGetRegistrationDate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	date, err := h.users.GetRegistrationDate(r.Context(), req.UserID.String())
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]string{
		"registration_date": date.UTC().Format(registrationDateLayout),
	})
}

// HandleGetUserStats returns the reputation counters.
//
// HTTP: POST /get_user_stats
func (h *UserHandler) HandleGetUserStats(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	stats, err := h.users.GetStats(r.Context(), req.UserID.String())
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, statsView{
		Deals:    stats.Deals,
		Positive: stats.Positive,
		Negative: stats.Negative,
		Volume:   json.Number(stats.Volume.String()),
	})
}

// HandleSaveUser registers the user the page read from Telegram's init data.
// The page calls it on load, after the server-side registration in /webapp,
// so usernames changed since the last visit are re-synced either way.
//
// HTTP: POST /save_user
// REQUEST BODY: {"user_id": 123, "name": "Ann", "surname": "Lee", "username": "annlee"}
func (h *UserHandler) HandleSaveUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   flexString `json:"user_id"`
		Name     string     `json:"name"`
		Surname  string     `json:"surname"`
		Username string     `json:"username"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.users.Register(r.Context(), req.UserID.String(), req.Name, req.Surname, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]string{"result": res.String()})
}

// HandleCheckUsername reports the stored username of a user. exists is true
// for every registered user, even when the stored username is empty.
//
// HTTP: POST /check_username
func (h *UserHandler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	username, err := h.users.GetUsername(r.Context(), req.UserID.String())
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]any{
		"username": username,
		"exists":   true,
	})
}
