/**
 * @description
 * HTTP handlers for the analytics endpoints. All of these are read-only
 * snapshots over committed ledger and workflow data.
 */

package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
)

// DailyActivityHandler handles GET /analytics/daily-activity?days=N.
func (h *FundingHandlers) DailyActivityHandler(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 365 {
			h.writeError(w, http.StatusBadRequest, "Invalid days")
			return
		}
		days = v
	}

	series, err := h.service.DailyFundingActivity(r.Context(), days)
	if err != nil {
		log.Printf("level=error component=api endpoint=daily_activity err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute daily activity")
		return
	}
	h.writeJSON(w, http.StatusOK, series)
}

// SectorAllocationHandler handles GET /analytics/sector-allocation for the
// authenticated investor.
func (h *FundingHandlers) SectorAllocationHandler(w http.ResponseWriter, r *http.Request) {
	investorID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	slices, err := h.service.SectorAllocation(r.Context(), investorID)
	if err != nil {
		log.Printf("level=error component=api endpoint=sector_allocation investor_id=%s err=%v", investorID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute sector allocation")
		return
	}
	h.writeJSON(w, http.StatusOK, slices)
}

// FundingOverviewHandler handles GET /analytics/funding-overview for the
// authenticated founder.
func (h *FundingHandlers) FundingOverviewHandler(w http.ResponseWriter, r *http.Request) {
	founderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	overview, err := h.service.FundingOverview(r.Context(), founderID)
	if err != nil {
		log.Printf("level=error component=api endpoint=funding_overview founder_id=%s err=%v", founderID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute funding overview")
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// ApplicationTrendsHandler handles GET /analytics/application-trends for the
// authenticated founder.
func (h *FundingHandlers) ApplicationTrendsHandler(w http.ResponseWriter, r *http.Request) {
	founderID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	trends, err := h.service.ApplicationTrends(r.Context(), founderID)
	if err != nil {
		log.Printf("level=error component=api endpoint=application_trends founder_id=%s err=%v", founderID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute application trends")
		return
	}
	h.writeJSON(w, http.StatusOK, trends)
}

// PlatformSummaryHandler handles GET /analytics/summary. Requires the
// platform-stats capability.
func (h *FundingHandlers) PlatformSummaryHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := GetAuthRole(r.Context())
	if !ok || !role.Can(domain.CapViewPlatformStats) {
		h.writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	summary, err := h.service.PlatformSummary(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=platform_summary err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute summary")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// RequestStatusDistributionHandler handles GET /analytics/request-status.
func (h *FundingHandlers) RequestStatusDistributionHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := GetAuthRole(r.Context())
	if !ok || !role.Can(domain.CapViewPlatformStats) {
		h.writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	counts, err := h.service.RequestStatusDistribution(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=request_status err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute request distribution")
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

// SectorDistributionHandler handles GET /analytics/sectors.
func (h *FundingHandlers) SectorDistributionHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.SectorDistribution(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=sector_distribution err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not compute sector distribution")
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}
