package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "viewtrack/internal/db"
)

type videoRow struct {
	VideoID           string  `json:"video_id"`
	Name              string  `json:"name"`
	Tracking          bool    `json:"tracking"`
	ComparisonVideoID *string `json:"comparison_video_id,omitempty"`
}

func toVideoRow(v dbpkg.Video) videoRow {
	return videoRow{
		VideoID:           v.VideoID,
		Name:              v.Name,
		Tracking:          v.Tracking,
		ComparisonVideoID: v.ComparisonVideoID,
	}
}

// ListVideos returns every registered video, paused ones included.
func ListVideos(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		videos, err := dbpkg.ListVideos(db)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to list videos")
			return
		}
		rows := make([]videoRow, 0, len(videos))
		for _, v := range videos {
			rows = append(rows, toVideoRow(v))
		}
		jsonResponse(ctx, map[string]any{"videos": rows})
	}
}

type addVideoRequest struct {
	VideoID           string `json:"video_id"`
	Name              string `json:"name,omitempty"`
	ComparisonVideoID string `json:"comparison_video_id,omitempty"`
}

// AddVideo registers (or re-activates) a video for tracking.
func AddVideo(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload addVideoRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.VideoID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "video_id is required")
			return
		}

		var comparison *string
		if payload.ComparisonVideoID != "" {
			comparison = &payload.ComparisonVideoID
		}

		v, err := dbpkg.AddVideo(db, payload.VideoID, payload.Name, comparison)
		if err != nil {
			if errors.Is(err, dbpkg.ErrSelfComparison) {
				errResponse(ctx, fasthttp.StatusBadRequest, "comparison_video_id must differ from video_id")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to add video")
			return
		}
		log.Printf("registered video %s (%s)", v.VideoID, v.Name)
		jsonResponse(ctx, map[string]any{"video": toVideoRow(*v)})
	}
}

// PauseVideo excludes a video from future poll cycles without touching
// its history.
func PauseVideo(db *gorm.DB) fasthttp.RequestHandler {
	return lifecycleHandler(db, dbpkg.PauseVideo, "paused")
}

// ResumeVideo puts a paused video back into poll cycles.
func ResumeVideo(db *gorm.DB) fasthttp.RequestHandler {
	return lifecycleHandler(db, dbpkg.ResumeVideo, "resumed")
}

// RemoveVideo deletes a video and its entire sample history.
func RemoveVideo(db *gorm.DB) fasthttp.RequestHandler {
	return lifecycleHandler(db, dbpkg.RemoveVideo, "removed")
}

func lifecycleHandler(db *gorm.DB, op func(*gorm.DB, string) error, verb string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := videoIDParam(ctx)
		if !ok {
			return
		}
		if err := op(db, id); err != nil {
			if errors.Is(err, dbpkg.ErrVideoNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "video not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to update video")
			return
		}
		log.Printf("%s video %s", verb, id)
		jsonResponse(ctx, map[string]any{"video_id": id, "status": verb})
	}
}
