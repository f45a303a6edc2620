package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

// TrackingStore is the coupon side of the tracking join.
type TrackingStore interface {
	FetchAll(ctx context.Context) (*repository.Snapshot, error)
}

// ClaimStore is the claim-log side of the tracking join.
type ClaimStore interface {
	FetchAll(ctx context.Context) ([]models.ClaimRecord, error)
}

// TrackingService builds the distribution dashboard: coupons joined with the
// claim log, counters, filtering and the CSV export.
type TrackingService struct {
	store   TrackingStore
	claims  ClaimStore
	baseURL string
	logger  *zap.Logger
}

func NewTrackingService(store TrackingStore, claims ClaimStore, baseURL string, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		store:   store,
		claims:  claims,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// TrackingItem is one dashboard row: a coupon plus the share link for it.
type TrackingItem struct {
	models.Coupon
	FormLink string `json:"formLink"`
}

// Stats are the dashboard counters, computed over the full coupon set
// before any filter is applied. Distributed is the reward sum of used
// coupons.
type Stats struct {
	Total       int `json:"total"`
	Used        int `json:"used"`
	Unused      int `json:"unused"`
	Distributed int `json:"distributed"`
}

// TrackingView is the full dashboard payload.
type TrackingView struct {
	Items []TrackingItem `json:"items"`
	Stats Stats          `json:"stats"`
}

// View assembles the dashboard. Claim-log rows are joined onto coupons by
// case-insensitive code match and only backfill claim fields the coupon row
// itself is missing; the coupon sheet stays authoritative where both have a
// value. Items come back newest first by created timestamp.
func (s *TrackingService) View(ctx context.Context, query, status string) (*TrackingView, error) {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	coupons := snap.Coupons
	if records, err := s.claims.FetchAll(ctx); err != nil {
		// The dashboard still renders from the coupon sheet alone when the
		// claim log is unreadable.
		s.logger.Warn("claim log fetch failed, rendering without join", zap.Error(err))
	} else {
		coupons = joinClaims(coupons, records)
	}

	stats := computeStats(coupons)
	filtered := filterCoupons(coupons, query, status)
	sortByCreatedDesc(filtered)

	items := make([]TrackingItem, 0, len(filtered))
	for _, c := range filtered {
		items = append(items, TrackingItem{Coupon: c, FormLink: s.FormLink(c.Code)})
	}
	return &TrackingView{Items: items, Stats: stats}, nil
}

// FormLink builds the public claim-form URL for a code.
func (s *TrackingService) FormLink(code string) string {
	return s.baseURL + "/redeem?code=" + url.QueryEscape(code)
}

// UnusedForQR returns the unused coupons only, for the printable QR sheet.
func (s *TrackingService) UnusedForQR(ctx context.Context) ([]TrackingItem, error) {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	var items []TrackingItem
	for _, c := range snap.Coupons {
		if c.Status == models.StatusUnused {
			items = append(items, TrackingItem{Coupon: c, FormLink: s.FormLink(c.Code)})
		}
	}
	return items, nil
}

// ExportCSV renders the current dashboard view (same join, filter and order)
// as a CSV document.
func (s *TrackingService) ExportCSV(ctx context.Context, query, status string) ([]byte, error) {
	view, err := s.View(ctx, query, status)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Coupon Code", "Status", "Claimed By", "Phone", "UPI ID", "Claimed At", "Reward Amount", "Form Link"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, item := range view.Items {
		reward := "₹0"
		if item.Status == models.StatusUsed {
			reward = fmt.Sprintf("₹%d", item.Reward)
		}
		record := []string{
			item.Code,
			string(item.Status),
			item.ClaimedBy,
			item.Phone,
			item.UPIID,
			item.ClaimedAt,
			reward,
			item.FormLink,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// joinClaims backfills missing claim fields on coupons from the claim log.
// The first log row matching a coupon's code wins.
func joinClaims(coupons []models.Coupon, records []models.ClaimRecord) []models.Coupon {
	byCode := make(map[string]models.ClaimRecord, len(records))
	for _, rec := range records {
		key := strings.ToLower(strings.TrimSpace(rec.CouponCode))
		if _, ok := byCode[key]; !ok {
			byCode[key] = rec
		}
	}

	out := make([]models.Coupon, len(coupons))
	for i, c := range coupons {
		rec, ok := byCode[strings.ToLower(strings.TrimSpace(c.Code))]
		if ok {
			if c.ClaimedBy == "" {
				c.ClaimedBy = rec.Name
			}
			if c.Phone == "" {
				c.Phone = rec.Phone
			}
			if c.UPIID == "" {
				c.UPIID = rec.UPIID
			}
			if c.ClaimedAt == "" {
				c.ClaimedAt = rec.Date
			}
		}
		out[i] = c
	}
	return out
}

func computeStats(coupons []models.Coupon) Stats {
	var st Stats
	for _, c := range coupons {
		if c.Status == models.StatusDeleted {
			continue
		}
		st.Total++
		switch c.Status {
		case models.StatusUsed:
			st.Used++
			st.Distributed += c.Reward
		default:
			st.Unused++
		}
	}
	return st
}

// filterCoupons applies the free-text query (code or claimant substring) and
// the status facet. Deleted coupons never appear on the dashboard.
func filterCoupons(coupons []models.Coupon, query, status string) []models.Coupon {
	query = strings.ToLower(strings.TrimSpace(query))
	status = strings.ToLower(strings.TrimSpace(status))

	var out []models.Coupon
	for _, c := range coupons {
		if c.Status == models.StatusDeleted {
			continue
		}
		if status != "" && status != "all" && string(c.Status) != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Code), query) &&
			!strings.Contains(strings.ToLower(c.ClaimedBy), query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sortByCreatedDesc orders newest first. Cells that do not parse sort as the
// zero time, sinking to the bottom.
func sortByCreatedDesc(coupons []models.Coupon) {
	parse := func(raw string) time.Time {
		t, err := time.Parse(repository.TimestampLayout, strings.TrimSpace(raw))
		if err != nil {
			return time.Time{}
		}
		return t
	}
	sort.SliceStable(coupons, func(i, j int) bool {
		return parse(coupons[i].Created).After(parse(coupons[j].Created))
	})
}
