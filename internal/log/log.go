// Package log emits one JSON line per event on the standard logger, tagged
// with request metadata when a fiber context is available.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type record struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	Action string         `json:"action,omitempty"`
	ReqID  string         `json:"req_id,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Status int            `json:"status,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (r *record) fromCtx(c *fiber.Ctx) {
	if c == nil {
		return
	}
	r.Method = c.Method()
	r.Path = c.Path()
	r.IP = c.IP()
	r.Status = c.Response().StatusCode()
	if rid, ok := c.Locals("requestid").(string); ok {
		r.ReqID = rid
	}
}

func emit(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	r := record{
		TS:     time.Now().UTC().Format(time.RFC3339),
		Level:  level,
		Action: action,
		Fields: fields,
	}
	r.fromCtx(c)
	if err != nil {
		r.Err = err.Error()
	}
	line, _ := json.Marshal(&r)
	log.Println(string(line))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	emit("info", c, action, nil, fields)
}

// Audit records state-changing actions (order placed, status moved, coupon applied).
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	emit("audit", c, action, nil, fields)
}

// Security records rejected or suspicious input.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit("warn", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit("error", c, action, err, fields)
}
