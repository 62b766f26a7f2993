package handlers

import (
	"bytes"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"viewtrack/internal/config"
	dbpkg "viewtrack/internal/db"
	ui "viewtrack/web"
)

type viewerVideo struct {
	VideoID      string
	Name         string
	Tracking     bool
	CurrentViews *int64
	Dates        []string
}

type viewerData struct {
	Videos       []viewerVideo
	ErrorMessage string
}

// Viewer renders the HTML overview page: every registered video with
// its latest view count for today and links into the per-date history.
func Viewer(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		data := viewerData{}

		videos, err := dbpkg.ListVideos(db)
		if err != nil {
			data.ErrorMessage = "Service temporarily unavailable."
			renderViewer(ctx, data)
			return
		}

		now := time.Now().In(cfg.Location)
		today := now.Format("2006-01-02")

		for _, v := range videos {
			vv := viewerVideo{VideoID: v.VideoID, Name: v.Name, Tracking: v.Tracking}
			if s, err := dbpkg.LatestSampleAtOrBefore(db, v.VideoID, today, now); err == nil && s != nil {
				views := s.Views
				vv.CurrentViews = &views
			}
			if dates, err := dbpkg.SampleDates(db, v.VideoID); err == nil {
				vv.Dates = dates
			}
			data.Videos = append(data.Videos, vv)
		}

		renderViewer(ctx, data)
	}
}

func renderViewer(ctx *fasthttp.RequestCtx, data viewerData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "viewer.html", data); err != nil {
		errResponse(ctx, fasthttp.StatusInternalServerError, "failed to render page")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}
