package session

import (
	"encoding/json"
)

// Входящие сообщения
const (
	MsgSearch          = "search"
	MsgSelectStock     = "select_stock"
	MsgSetField        = "set_field"
	MsgSetAutoCalc     = "set_auto_calc"
	MsgOpenTip         = "open_tip"
	MsgReset           = "reset"
	MsgSubmitTip       = "submit_tip"
	MsgRefreshStart    = "refresh_start"
	MsgRefreshStop     = "refresh_stop"
	MsgRefreshInterval = "refresh_interval"
	MsgRefreshNow      = "refresh_now"
)

// Исходящие сообщения
const (
	MsgSearchResults    = "search_results"
	MsgStockSelected    = "stock_selected"
	MsgForm             = "form"
	MsgTipSaved         = "tip_saved"
	MsgValidationErrors = "validation_errors"
	MsgStocks           = "stocks"
	MsgToast            = "toast"
	MsgError            = "error"
)

// Message - конверт сообщения в обе стороны
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type selectStockRequest struct {
	ID string `json:"id"`
}

type setFieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type setAutoCalcRequest struct {
	Field string `json:"field"`
	On    bool   `json:"on"`
}

type refreshIntervalRequest struct {
	Interval string `json:"interval"`
}

type searchResults struct {
	Term    string `json:"term"`
	Results any    `json:"results"`
}

type errorPayload struct {
	Request string `json:"request,omitempty"`
	Error   string `json:"error"`
}
