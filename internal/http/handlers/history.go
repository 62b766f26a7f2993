package handlers

import (
	"errors"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"viewtrack/internal/config"
	dbpkg "viewtrack/internal/db"
	"viewtrack/internal/gain"
)

type historyRow struct {
	Timestamp       string   `json:"timestamp"`
	Views           int64    `json:"views"`
	Likes           int64    `json:"likes"`
	ViewGain        int64    `json:"view_gain"`
	LikeGain        int64    `json:"like_gain"`
	HourlyViewGain  int64    `json:"hourly_view_gain"`
	HourlyLikeGain  int64    `json:"hourly_like_gain"`
	ViewLikeRatio   float64  `json:"view_like_ratio"`
	ComparisonRatio *float64 `json:"comparison_ratio,omitempty"`
}

// SampleDates lists the dates a video has samples for, newest first.
func SampleDates(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := videoIDParam(ctx)
		if !ok {
			return
		}
		if _, err := dbpkg.FindVideo(db, id); err != nil {
			respondVideoErr(ctx, err)
			return
		}
		dates, err := dbpkg.SampleDates(db, id)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query dates")
			return
		}
		jsonResponse(ctx, map[string]any{"video_id": id, "dates": dates})
	}
}

// History returns one date's samples with derived metrics. Defaults to
// today in the configured zone. Days with sparse data degrade to
// zero/absent gains; they never fail the request.
func History(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := videoIDParam(ctx)
		if !ok {
			return
		}
		date, ok := dateQuery(ctx, cfg.Location)
		if !ok {
			return
		}

		video, err := dbpkg.FindVideo(db, id)
		if err != nil {
			respondVideoErr(ctx, err)
			return
		}

		points, err := historyPoints(db, video, date)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query samples")
			return
		}

		rows := make([]historyRow, 0, len(points))
		for _, p := range points {
			rows = append(rows, historyRow{
				Timestamp:       p.Timestamp.Format("2006-01-02 15:04:05"),
				Views:           p.Views,
				Likes:           p.Likes,
				ViewGain:        p.ViewGain,
				LikeGain:        p.LikeGain,
				HourlyViewGain:  p.HourlyViewGain,
				HourlyLikeGain:  p.HourlyLikeGain,
				ViewLikeRatio:   p.ViewLikeRatio,
				ComparisonRatio: p.ComparisonRatio,
			})
		}
		jsonResponse(ctx, map[string]any{"video_id": id, "date": date, "history": rows})
	}
}

// DailyTotal returns the views gained over one date, summed from the
// intra-day deltas.
func DailyTotal(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := videoIDParam(ctx)
		if !ok {
			return
		}
		date, ok := dateQuery(ctx, cfg.Location)
		if !ok {
			return
		}

		if _, err := dbpkg.FindVideo(db, id); err != nil {
			respondVideoErr(ctx, err)
			return
		}

		samples, err := dbpkg.SamplesForDate(db, id, date)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query samples")
			return
		}
		total := gain.TotalViewGain(gain.Compute(samples, nil))
		jsonResponse(ctx, map[string]any{"video_id": id, "date": date, "total_view_gain": total})
	}
}

// historyPoints runs the two range reads (primary video, optional
// comparison partner) and the gain computation for one date.
func historyPoints(db *gorm.DB, video *dbpkg.Video, date string) ([]gain.Point, error) {
	samples, err := dbpkg.SamplesForDate(db, video.VideoID, date)
	if err != nil {
		return nil, err
	}

	var compSamples []dbpkg.Sample
	if video.ComparisonVideoID != nil {
		compSamples, err = dbpkg.SamplesForDate(db, *video.ComparisonVideoID, date)
		if err != nil {
			return nil, err
		}
	}

	return gain.Compute(samples, compSamples), nil
}

func respondVideoErr(ctx *fasthttp.RequestCtx, err error) {
	if errors.Is(err, dbpkg.ErrVideoNotFound) {
		errResponse(ctx, fasthttp.StatusNotFound, "video not found")
		return
	}
	errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
}
