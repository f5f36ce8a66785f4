package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kahwadash/internal/config"
	"kahwadash/internal/export"
	"kahwadash/internal/models"
	"kahwadash/internal/orderapi"
	"kahwadash/internal/receipt"
	"kahwadash/internal/session"

	"github.com/shopspring/decimal"
)

type loginView struct {
	Brand config.BrandingConfig
	Alert string
}

type dashboardView struct {
	Brand         config.BrandingConfig
	Menu          []models.MenuItem
	Orders        []models.Order
	Loading       bool
	Error         string
	Notice        string
	Statuses      []string
	SheetsEnabled bool
}

type errorView struct {
	Brand   config.BrandingConfig
	Message string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if s.gate.IsUnlocked(r.Context(), s.sessionID(r)) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, "login.html", loginView{Brand: s.cfg.Branding})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.renderError(w, http.StatusBadRequest, "Malformed form submission")
			return
		}

		sessionID, err := s.gate.Unlock(r.Context(), r.PostFormValue("password"))
		if errors.Is(err, session.ErrWrongPassword) {
			s.render(w, http.StatusUnauthorized, "login.html", loginView{
				Brand: s.cfg.Branding,
				Alert: "Invalid password",
			})
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("unlock session")
			s.renderError(w, http.StatusInternalServerError, "Login is temporarily unavailable")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.Auth.CookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(s.cfg.Auth.SessionTTL / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Each page view re-fetches menu and orders, like the original mount.
	// A failed refresh keeps whatever was loaded before, plus the message.
	_ = s.dash.LoadAll(r.Context())

	menu, orders, loading, errMsg := s.dash.Snapshot()

	view := dashboardView{
		Brand:         s.cfg.Branding,
		Menu:          menu,
		Orders:        orders,
		Loading:       loading,
		Error:         errMsg,
		Statuses:      models.OrderStatuses,
		SheetsEnabled: s.exporter != nil,
	}
	switch {
	case r.URL.Query().Get("exported") == "1":
		view.Notice = "Orders exported to Google Sheets"
	case r.URL.Query().Get("export_failed") == "1":
		view.Error = "Failed to export orders"
	}

	s.render(w, http.StatusOK, "dashboard.html", view)
}

func (s *Server) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	itemID := idSegment(r.URL.Path, "/menu/", "/stock")
	if itemID == "" {
		s.renderError(w, http.StatusBadRequest, "Item id is required")
		return
	}

	newStock, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("stock")))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Stock must be a whole number")
		return
	}

	// Failure surfaces as the dashboard error message; local state untouched.
	_ = s.dash.UpdateStock(r.Context(), itemID, newStock)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID := idSegment(r.URL.Path, "/orders/", "/status")
	if orderID == "" {
		s.renderError(w, http.StatusBadRequest, "Order id is required")
		return
	}

	// The status value passes through as-is; the remote service owns
	// validation and the lifecycle.
	newStatus := strings.TrimSpace(r.PostFormValue("status"))
	_ = s.dash.UpdateOrderStatus(r.Context(), orderID, newStatus)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orderID := strings.TrimPrefix(r.URL.Path, "/receipt/")
	if orderID == "" || strings.Contains(orderID, "/") {
		s.renderError(w, http.StatusBadRequest, "Order id is required")
		return
	}

	order, err := s.client.GetOrder(r.Context(), orderID)
	if errors.Is(err, orderapi.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("load order for receipt")
		s.renderError(w, http.StatusBadGateway, "Failed to load order")
		return
	}

	s.render(w, http.StatusOK, "receipt.html", receipt.Build(order, s.cfg.Branding))
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	f, err := export.OrdersWorkbook(s.dash.Orders())
	if err != nil {
		s.logger.Error().Err(err).Msg("build orders workbook")
		s.renderError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("stream orders workbook")
	}
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if s.exporter == nil {
		s.renderError(w, http.StatusBadRequest, "Sheets export is not configured")
		return
	}

	if err := s.exporter.ExportOrders(r.Context(), s.dash.Orders()); err != nil {
		s.logger.Error().Err(err).Msg("export orders to sheet")
		http.Redirect(w, r, "/?export_failed=1", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?exported=1", http.StatusSeeOther)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, statusCode int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("render template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, statusCode int, message string) {
	s.render(w, statusCode, "error.html", errorView{Brand: s.cfg.Branding, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func formatTime(t time.Time) string {
	return receipt.FormatTimestamp(t)
}

func renderMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// idSegment extracts the id from paths shaped like prefix + id + suffix.
func idSegment(path, prefix, suffix string) string {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func hasIDSegment(path, prefix, suffix string) bool {
	return idSegment(path, prefix, suffix) != ""
}
