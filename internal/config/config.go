package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Refill/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Refill"
	AppID             = "com.github.tartampluch.go-refill"
	KeyringService    = "com.github.tartampluch.go-refill"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion     = "version"
	FlagDebug       = "debug"
	FlagFile        = "file"
	FlagURL         = "url"
	FlagToday       = "today"
	FlagFormat      = "format"
	FlagLang        = "lang"
	FlagConfig      = "config"
	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescFile    = "Patient list (.csv, .txt, .xlsx) to evaluate once and print; the tray app starts when no source is given"
	FlagDescURL     = "Download the patient list from this http(s) URL instead of a local file"
	FlagDescToday   = "Override today's date (YYYY-MM-DD) for the report"
	FlagDescFormat  = "Report format: table, json, ics, vcf"
	FlagDescLang    = "Message language (zh-TW, en)"
	FlagDescConfig  = "Optional YAML settings file"

	MsgVersionOutput = "%s version %s, commit %s, built %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Headless Settings (koanf)
// -----------------------------------------------------------------------------

const (
	EnvPrefix     = "REFILL_"
	EnvConfigFile = "REFILL_CONFIG"
	KoanfDelim    = "."
	KoanfTag      = "koanf"

	FormatTable = "table"
	FormatJSON  = "json"
	FormatICS   = "ics"
	FormatVCF   = "vcf"
)

// SupportedFormats lists the report formats accepted by the CLI.
var SupportedFormats = []string{FormatTable, FormatJSON, FormatICS, FormatVCF}

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600

	// Preference Keys
	PrefSourceURL     = "source_url"
	PrefUsername      = "username"
	PrefLanguage      = "language"
	PrefInterval      = "refresh_interval_min"
	PrefServerPort    = "server_port"
	PrefSourceMode    = "source_mode"
	PrefLocalPath     = "local_path"
	PrefAlarmEnabled  = "alarm_enabled"
	PrefAlarmDaysLead = "alarm_days_lead"
	PrefLastRun       = "last_run_version"
)

// SupportedLanguages defines the list of available UI and message languages (BCP 47).
var SupportedLanguages = []string{"zh-TW", "en"}

// -----------------------------------------------------------------------------
// UI Reminders Window Constants
// -----------------------------------------------------------------------------

const (
	RemindersWinWidth  = 720
	RemindersWinHeight = 420

	// Table Column IDs
	ColIDName    = 0
	ColIDRound   = 1
	ColIDWindow  = 2
	ColIDContact = 3
	ColCount     = 4

	// Table Layout
	ColWidthName    = 180
	ColWidthRound   = 70
	ColWidthWindow  = 220
	ColWidthContact = 230

	TablePlaceholder = "Cell Content"
	WindowSeparator  = " – "
	LogMsgOpenWin    = "Opening reminders window"
	LogMsgSorted     = "Reminders sorted"

	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinReminders   = "win_reminders_title"
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuSettings   = "menu_settings"
	TKeyMenuOpenFile   = "menu_open_file"
	TKeyTrayStatus     = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero = "tray_status_zero" // Explicit key for 0
	TKeyNotifStart     = "notif_sync_start"
	TKeyNotifSuccess   = "notif_sync_success"
	TKeyNotifError     = "notif_err_sync"
	TKeyModeWeb        = "mode_web"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblEnableAlarm = "lbl_enable_alarm"
	TKeyLblDaysBefore  = "lbl_days_before"
	TKeyLblCalendar    = "lbl_calendar"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_source_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"
	TKeyLblStats       = "lbl_stats" // Requires Processed, Found, Today
	TKeyLblNoReminders = "lbl_no_reminders"
	TKeyEvtSummary     = "event_summary" // Requires Name, Round
	TKeyMailSubject    = "mail_subject"
	TKeyMailBody       = "mail_body" // Requires Name, Start, End

	// Column Headers & Formats
	TKeyColName    = "col_name"
	TKeyColRound   = "col_round"
	TKeyColWindow  = "col_window"
	TKeyColContact = "col_contact"
	TKeyFormatDate = "format_date_short" // Date format pattern (e.g., "2006/01/02")

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
	TKeyErrOpenFile  = "err_open_file"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb          = "web"
	SourceModeLocal        = "local"
	DefaultPort            = "18081"
	DefaultRefreshMin      = 60
	DefaultLanguage        = "zh-TW"
	DefaultTimezone        = "Asia/Taipei"
	DefaultFormat          = FormatTable
	DefaultAlarmDaysLead   = 0
	UIDSalt                = "go-refill-v1-" // Salt for deterministic reminder identifiers
	DisabledInterval       = 0
	ReminderKeySeparator   = "|"
	FormatReminderKey      = "%s|%s|%d|%d"
	FormatAlarmTriggerDays = "-P%dD"
	AlarmTriggerStartOfDay = "PT0S"
)

// Refill projection parameters.
const (
	// RoundCount is the fixed number of refill rounds projected per record.
	RoundCount = 3

	// WindowLeadDays is the number of days a reminder window opens before the
	// last covered day. The window spans WindowLeadDays+1 calendar days.
	WindowLeadDays = 9
)

// -----------------------------------------------------------------------------
// Input Format
// -----------------------------------------------------------------------------

const (
	LineSeparator   = "\n"
	ColumnSeparator = ","
	FieldQuote      = `"`
	MinColumns      = 4

	ColName         = 0
	ColContact      = 1
	ColDispenseDate = 2
	ColDays         = 3

	HeaderMarkerName = "name"
	HeaderMarkerDays = "days"

	// Row skip reasons surfaced through ParseResult.Skipped.
	SkipTooFewColumns = "too few columns"
	SkipMissingName   = "missing name"
	SkipMissingDate   = "missing first dispense date"
	SkipInvalidDate   = "invalid first dispense date"
	SkipInvalidDays   = "invalid days"
	SkipNegativeDays  = "negative days"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Refill//Engine//EN"
	ICalCalName   = "Refill Windows"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gorefill"
	ICalTransp    = "TRANSPARENT"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropTransp      = "TRANSP"

	// vCard
	VCardVersion  = "4.0"
	VCardKindInd  = "individual"
	ContactAtSign = "@"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	DateFormatISO     = "2006-01-02"
	DateFormatDisplay = "2006/01/02"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatUID = "%s-r%d@%s"

	// File Extensions
	ExtCSV  = ".csv"
	ExtTXT  = ".txt"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"

	// ZipMagic starts every .xlsx file (a zip archive).
	ZipMagic = "PK\x03\x04"
)

// SourceExtensions lists the patient list extensions the decoder accepts.
var SourceExtensions = []string{ExtCSV, ExtTXT, ExtXLSX}

// MimeExtensions maps a download's Content-Type to the extension that selects its decoder.
var MimeExtensions = map[string]string{
	MimeCSV:   ExtCSV,
	MimePlain: ExtTXT,
	MimeXLSX:  ExtXLSX,
	MimeXLS:   ExtXLS,
}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	MaxSourceSize       = 32 * 1024 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteCalendar       = "/refills.ics"
	RouteContacts       = "/due.vcf"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderContentDisp     = "Content-Disposition"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextVCard       = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeCSV             = "text/csv"
	MimePlain           = "text/plain"
	MimeXLSX            = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS             = "application/vnd.ms-excel"

	// ParamFilename is the Content-Disposition parameter carrying the file name.
	ParamFilename = "filename"

	// DownloadBaseName names a download whose type is only known from Content-Type.
	DownloadBaseName = "download"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Message Links
// -----------------------------------------------------------------------------

const (
	MailtoScheme     = "mailto:"
	MailtoSubject    = "?subject="
	MailtoBody       = "&body="
	QuerySpace       = "+"
	PercentEncodedSP = "%20"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrPortNumber        = "server port must be a number"
	ErrPortRange         = "server port must be between 1 and 65535"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrSourceRead        = "failed to read patient list"
	ErrSourceDecode      = "failed to decode patient list"
	ErrUnsupportedFormat = "unsupported patient list format"
	ErrWorkbook          = "failed to read workbook"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrVCardEncode       = "failed to encode vCard data"
	ErrDateParse         = "unable to parse date"
	ErrTimezone          = "unknown timezone"
	ErrInvalidSettings   = "invalid settings"
	ErrLoadSettings      = "failed to load settings"
	ErrUnknownFormat     = "unknown report format"
	ErrUnknownLanguage   = "unsupported language"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrWriteReport       = "failed to write report"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrTrayNotSupported  = "system tray not supported on this platform/driver"
	ErrLocNotInit        = "localizer not initialized"
	ErrOpenURL           = "failed to open message link"
	ErrKeyringSave       = "failed to save credentials to keyring"
	ErrRequest           = "failed to create request"
	ErrNetwork           = "network error during fetch"
	ErrHTTPStatus        = "server returned unexpected status"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Refill calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary     = "Refill window: %s (round %d)"
	FormatContactNote   = "Refill window (round %d): %s – %s"
	FallbackTrayError   = "Go Refill: Sync Error"
	FallbackTrayDefault = "Go Refill (%d today)"
	FallbackTrayLabel   = "Go Refill"

	// FallbackMailSubject and FallbackMailBody are used when no localizer is available.
	// The body expects name, window start and window end.
	FallbackMailSubject = "慢箋領藥提醒"
	FallbackMailBody    = "%s 您好，\n\n這是慢箋領藥提醒。您的可領藥期間為 %s 起至 %s 止。\n\n提醒您攜帶：\n1. 健保卡\n2. 慢性處方箋\n\n請前往本藥局領藥。如有任何問題歡迎與我們聯繫。\n\n祝 平安健康"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Sync Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgSyncStarted    = "Synchronization started..."
	MsgSyncFailed     = "Synchronization failed. Check logs."
	MsgSyncReq        = "Sync requested"
	MsgSyncFinished   = "Sync finished"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchStart     = "Patient list downloading"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgUpdateSync     = "Updating sync interval"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedRow     = "Skipping malformed patient row"
	MsgReminderDue    = "Refill reminder due today"
	MsgEvalSuccess    = "Refill evaluation successful"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgFatal          = "%s: %v\n"
	MsgSourceDecoded  = "Patient list decoded"
	MsgSettingsLoaded = "Settings loaded"
	MsgReportDone     = "Report written"
	MsgSettingsOpen   = "Opening settings window"
	MsgSettingsFocus  = "Settings window already open, requesting focus"
	MsgSettingsSave   = "Saving preferences"
	MsgRefreshOff     = "Auto-refresh disabled via settings"
	MsgAlarmOff       = "Calendar alarms disabled via settings (lead is empty)"

	// Report output
	ReportSummary      = "Today (%s): processed %d patients, found %d reminders, skipped %d rows\n"
	ReportHeader       = "NAME\tROUND\tWINDOW\tCONTACT\tLINK"
	ReportRow          = "%s\t%d\t%s – %s\t%s\t%s\n"
	ReportNoReminders  = "No reminders due today."
	ReportJSONIndent   = "  "
	ReportTabMinWidth  = 0
	ReportTabWidth     = 4
	ReportTabPadding   = 2
	ReportTabPadChar   = ' '
	ReportTabwriterFlg = 0

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Source Encodings
// -----------------------------------------------------------------------------

const (
	EncodingUTF8 = "utf-8"
	EncodingBig5 = "big5"
	EncodingXLSX = "xlsx"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyProcessed = "patients_processed"
	LogKeyFound     = "reminders_found"
	LogKeySkipped   = "rows_skipped"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyLine      = "line"
	LogKeyReason    = "reason"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyRound     = "round"
	LogKeyStart     = "window_start"
	LogKeyEnd       = "window_end"
	LogKeyToday     = "today"
	LogKeyEncoding  = "encoding"
	LogKeyFormat    = "format"
	LogKeyTimezone  = "timezone"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompEngine   = "engine"
	CompParser   = "parser"
	CompSource   = "source"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
	CompReport   = "report"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
