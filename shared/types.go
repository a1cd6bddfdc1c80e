package shared

import "time"

const (
	SENT_STATUS   = "sent"
	FAILED_STATUS = "failed"
)

type ServerConfig struct {
	Swiftly SwiftlyConfig `mapstructure:"swiftly" validate:"required"`
	Twilio  TwilioConfig  `mapstructure:"twilio" validate:"required"`
	Google  GoogleConfig  `mapstructure:"google"`
}

type SwiftlyConfig struct {
	AuditLogPath string         `mapstructure:"auditLogPath"`
	Cron         CronConfig     `mapstructure:"cron" validate:"required"`
	Listener     ListenerConfig `mapstructure:"listener" validate:"required"`
	Dispatch     DispatchConfig `mapstructure:"dispatch"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid" validate:"required"`
	AuthToken           string `mapstructure:"authToken" validate:"required"`
	From                string `mapstructure:"from" validate:"required_without=MessagingServiceSid"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
	Channel             string `mapstructure:"channel" validate:"omitempty,oneof=sms whatsapp"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type DispatchConfig struct {
	MaxConcurrency int `mapstructure:"maxConcurrency" validate:"omitempty,min=1"`
}

type StorageConfig struct {
	Bucket                 string `mapstructure:"bucket" validate:"required_with=EnableAuditLogBackup"`
	Prefix                 string `mapstructure:"prefix"`
	AuditLogBackupSchedule string `mapstructure:"auditLogBackupSchedule" validate:"required_with=EnableAuditLogBackup"`
	EnableAuditLogBackup   bool   `mapstructure:"enableAuditLogBackup"`
}

// AlertRequest is the payload a client POSTs to /sos once an SOS is confirmed.
// Field order matters: validation reports the first failing field in this order.
type AlertRequest struct {
	Name          string   `json:"name" validate:"notblank"`
	Surname       string   `json:"surname" validate:"notblank"`
	Contacts      []string `json:"contacts" validate:"required,min=1,dive,notblank"`
	Coordinates   string   `json:"coordinates" validate:"notblank"`
	CallMeAt      string   `json:"callMeAt" validate:"notblank"`
	EmergencyType string   `json:"emergencyType" validate:"notblank"`
}

// DispatchResult is the outcome of notifying one contact.
type DispatchResult struct {
	Number string `json:"number"`
	Sid    string `json:"sid,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type AlertResponse struct {
	Message string           `json:"message"`
	Results []DispatchResult `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// LogEntry is one audit record of a full alert-dispatch attempt.
type LogEntry struct {
	Timestamp   time.Time        `json:"timestamp"`
	Name        string           `json:"name"`
	Surname     string           `json:"surname"`
	Coordinates string           `json:"coordinates"`
	Contacts    []string         `json:"contacts"`
	Results     []DispatchResult `json:"results"`
}

type Paging struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Pages int64 `json:"pages"`
}

type LogsResponse struct {
	Data   []LogEntry `json:"data"`
	Paging *Paging    `json:"paging"`
}
