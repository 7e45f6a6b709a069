// Package payload decodes and validates readings batches for every transport.
// Messages returned in *Error are meant to be shown to the client as is.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/dayanaadylkhanova/device-readings/internal/entity"
	"github.com/go-playground/validator/v10"
)

const (
	MsgMalformedJSON     = "Malformed JSON payload"
	MsgIDRequired        = "id is required"
	MsgReadingsRequired  = "readings array is required"
	MsgTimestampRequired = "timestamp is required for each reading"
	MsgCountRequired     = "count is required for each reading"
)

// Error is a client-facing validation failure.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

var validate *validator.Validate

// A single validator instance is used, because it caches struct parsing.
func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"device_uid": isDeviceUID,
		"present":    isPresent,
		"instant":    isInstant,
		"whole":      isWhole,
		"nonneg":     isNonNegative,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

func isDeviceUID(fl validator.FieldLevel) bool {
	_, ok := DeviceUID(fl.Field().Interface())
	return ok
}

// DeviceUID accepts a non-empty string or a JSON number as a device uid.
func DeviceUID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	}
	return "", false
}

// isPresent rejects the empty string. A nil field never reaches it: the
// validator reports nil interfaces against the first tag on its own.
func isPresent(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return !ok || s != ""
}

func isInstant(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := entity.ParseInstant(s)
	return err == nil
}

func isWhole(fl validator.FieldLevel) bool {
	n, ok := fl.Field().Interface().(json.Number)
	if !ok {
		return false
	}
	_, err := n.Int64()
	return err == nil
}

func isNonNegative(fl validator.FieldLevel) bool {
	n, ok := fl.Field().Interface().(json.Number)
	if !ok {
		return false
	}
	v, err := n.Int64()
	return err == nil && v >= 0
}

// Decode reads one JSON object {"id": ..., "readings": [...]} from r.
func Decode(r io.Reader) (string, []entity.Sample, error) {
	var raw struct {
		ID       any `json:"id"`
		Readings any `json:"readings"`
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if isJSONError(err) {
			return "", nil, &Error{Message: MsgMalformedJSON}
		}
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", nil, &Error{Message: MsgMalformedJSON}
	}
	return Build(raw.ID, raw.Readings)
}

func isJSONError(err error) bool {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syn) || errors.As(err, &typ) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Build validates already decoded values. Numbers must be json.Number, as
// produced by a decoder with UseNumber. The whole batch is checked before
// anything is returned; the first failing rule wins.
func Build(id, readings any) (string, []entity.Sample, error) {
	req := entity.ReadingsRequest{ID: id}
	if items, ok := readings.([]any); ok {
		req.Readings = make([]entity.ReadingInput, len(items))
		for i, item := range items {
			if m, ok := item.(map[string]any); ok {
				req.Readings[i] = entity.ReadingInput{Timestamp: m["timestamp"], Count: m["count"]}
			}
		}
	}
	if err := validate.Struct(&req); err != nil {
		return "", nil, toError(err)
	}

	samples := make([]entity.Sample, 0, len(req.Readings))
	for _, in := range req.Readings {
		at, err := entity.ParseInstant(in.Timestamp.(string))
		if err != nil {
			return "", nil, &Error{Message: fmt.Sprintf("invalid timestamp: %v", in.Timestamp)}
		}
		n, err := in.Count.(json.Number).Int64()
		if err != nil {
			return "", nil, &Error{Message: fmt.Sprintf("invalid count: %v (must be an integer)", in.Count)}
		}
		samples = append(samples, entity.Sample{At: at, Count: n})
	}
	uid, _ := DeviceUID(req.ID)
	return uid, samples, nil
}

func toError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Message: err.Error()}
	}
	fe := verrs[0]
	switch fe.Field() {
	case "id":
		return &Error{Message: MsgIDRequired}
	case "readings":
		return &Error{Message: MsgReadingsRequired}
	case "timestamp":
		if fe.Tag() == "present" {
			return &Error{Message: MsgTimestampRequired}
		}
		return &Error{Message: fmt.Sprintf("invalid timestamp: %v", fe.Value())}
	case "count":
		switch fe.Tag() {
		case "required":
			return &Error{Message: MsgCountRequired}
		case "whole":
			return &Error{Message: fmt.Sprintf("invalid count: %v (must be an integer)", fe.Value())}
		default:
			return &Error{Message: fmt.Sprintf("invalid count: %v (must be non-negative)", fe.Value())}
		}
	}
	return &Error{Message: fe.Error()}
}
