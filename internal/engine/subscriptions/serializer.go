package subscriptions

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"hookreg/internal/engine/actions"
	"hookreg/internal/platform/models"
)

// Input is the writable shape of a webhook for create and full replace.
// The owner is never part of it; it comes from the caller.
type Input struct {
	URL               string            `json:"url" validate:"required,http_url,max=2048"`
	SendPayload       *bool             `json:"send_payload"`
	SendForAllActions *bool             `json:"send_for_all_actions"`
	Headers           map[string]string `json:"headers" validate:"omitempty,max=50,dive,keys,required,max=256,endkeys,max=4096"`
	IsActive          *bool             `json:"is_active"`
	Actions           []string          `json:"actions" validate:"omitempty,dive,required,webhook_action"`
}

// Patch carries the fields of a partial update; nil means unchanged.
type Patch struct {
	URL               *string            `json:"url"`
	SendPayload       *bool              `json:"send_payload"`
	SendForAllActions *bool              `json:"send_for_all_actions"`
	Headers           *map[string]string `json:"headers"`
	IsActive          *bool              `json:"is_active"`
	Actions           *[]string          `json:"actions"`
}

// Webhook converts validated input into a record, applying defaults.
func (in Input) Webhook() *models.Webhook {
	w := &models.Webhook{
		URL:               in.URL,
		SendPayload:       boolOr(in.SendPayload, true),
		SendForAllActions: boolOr(in.SendForAllActions, true),
		IsActive:          boolOr(in.IsActive, true),
		Headers:           map[string]string{},
		Actions:           dedupe(in.Actions),
	}
	for k, v := range in.Headers {
		w.Headers[k] = v
	}
	return w
}

func inputFrom(w *models.Webhook) Input {
	c := w.Clone()
	return Input{
		URL:               c.URL,
		SendPayload:       &c.SendPayload,
		SendForAllActions: &c.SendForAllActions,
		Headers:           c.Headers,
		IsActive:          &c.IsActive,
		Actions:           c.Actions,
	}
}

// apply merges the non-nil fields of p over in.
func (p Patch) apply(in Input) Input {
	if p.URL != nil {
		in.URL = *p.URL
	}
	if p.SendPayload != nil {
		in.SendPayload = p.SendPayload
	}
	if p.SendForAllActions != nil {
		in.SendForAllActions = p.SendForAllActions
	}
	if p.Headers != nil {
		in.Headers = *p.Headers
	}
	if p.IsActive != nil {
		in.IsActive = p.IsActive
	}
	if p.Actions != nil {
		in.Actions = *p.Actions
	}
	return in
}

// Validator checks Input against its shape and the action catalog.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(catalog *actions.Catalog) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("webhook_action", func(fl validator.FieldLevel) bool {
		return catalog.Has(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(in Input) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldName(fe)] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldName drops the struct name from the namespace: "Input.actions[0]" -> "actions[0]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "http_url":
		return "Enter a valid http or https URL."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters or entries."
	case "webhook_action":
		return "\"" + fe.Value().(string) + "\" is not a valid action."
	default:
		return "Invalid value (" + fe.Tag() + ")."
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
