package handlers

import (
	"encoding/json"
	"log"
	"regexp"
	"time"

	"github.com/valyala/fasthttp"
)

var dateParam = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}

func jsonResponse(ctx *fasthttp.RequestCtx, data map[string]any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func errResponse(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetBodyString(msg)
}

// videoIDParam reads the {id} path segment, or sends 400 and reports false.
func videoIDParam(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		errResponse(ctx, fasthttp.StatusBadRequest, "missing video id")
		return "", false
	}
	return id, true
}

// dateQuery reads the "date" query parameter, defaulting to today in
// loc. Sends 400 and reports false on a malformed value.
func dateQuery(ctx *fasthttp.RequestCtx, loc *time.Location) (string, bool) {
	date := string(ctx.QueryArgs().Peek("date"))
	if date == "" {
		return time.Now().In(loc).Format("2006-01-02"), true
	}
	if !dateParam.MatchString(date) {
		errResponse(ctx, fasthttp.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}
