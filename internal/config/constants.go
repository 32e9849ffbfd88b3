package config

// ExprFileExtensions are the recognized expression-tree file extensions (see ast.DecodeYAML)
var ExprFileExtensions = []string{".yaml", ".yml"}

// SettingsFileName is looked up next to the input when --settings is not given.
const SettingsFileName = "vybe.yaml"

// Evaluation limits
const (
	DefaultMaxEvalDepth       = 2000
	DefaultMaxBackgroundTasks = 64
)

// Built-in class names
const (
	TaskClassName             = "Task"
	BackgroundWorkerClassName = "BackgroundWorker"
	KeyValuePairClassName     = "KeyValuePair"
	StringBuilderClassName    = "StringBuilder"
	DataTableClassName        = "DataTable"
	DataRowClassName          = "DataRow"
	ProgressEventClassName    = "ProgressChangedEventArgs"
	AggregateExceptionName    = "AggregateException"
	TaskCanceledExceptionName = "TaskCanceledException"
)

// Well-known object field names. Fields are stored lower-cased.
const (
	HandleField              = "__handle"
	TypeField                = "__type"
	DataField                = "__data"
	ItemsField               = "items"
	RowsField                = "rows"
	ColumnsField             = "columns"
	CountField               = "count"
	KeyField                 = "key"
	ValueField               = "value"
	ResultField              = "result"
	IsCompletedField         = "iscompleted"
	IsFaultedField           = "isfaulted"
	IsCancelledField         = "iscanceled"
	ExceptionField           = "exception"
	StatusField              = "status"
	CancellationPendingField = "cancellationpending"
	ProgressField            = "progresspercentage"
	UserStateField           = "userstate"
)

// Task status names, as reported by Task.Status
const (
	TaskStatusRunning   = "Running"
	TaskStatusCompleted = "RanToCompletion"
	TaskStatusFaulted   = "Faulted"
	TaskStatusCanceled  = "Canceled"
)
