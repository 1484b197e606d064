package errs

const (
	ErrCode_OK        = 0
	ErrCode_Unknown   = 1
	ErrCode_Unmarshal = 2
	ErrCode_Marshal   = 3

	// 计时器
	ErrCode_InvalidDuration = 10
	ErrCode_AlreadyRunning  = 11
	ErrCode_NoPhases        = 12

	// 时间轮
	ErrCode_ClockClosed = 20
	ErrCode_ClockBusy   = 21

	// 音频
	ErrCode_AudioDevice = 30
	ErrCode_AudioDecode = 31

	// 配置
	ErrCode_Config          = 40
	ErrCode_PresetNotFound  = 41
	ErrCode_PresetAmbiguous = 42

	// 通知
	ErrCode_NotifyDropped = 50
	ErrCode_Publish       = 51
)

var (
	Unknown   = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	Unmarshal = CreateCodeError(ErrCode_Unmarshal, "UNMARSHAL")
	Marshal   = CreateCodeError(ErrCode_Marshal, "MARSHAL")

	InvalidDuration = CreateCodeError(ErrCode_InvalidDuration, "INVALID_DURATION")
	AlreadyRunning  = CreateCodeError(ErrCode_AlreadyRunning, "ALREADY_RUNNING")
	NoPhases        = CreateCodeError(ErrCode_NoPhases, "NO_PHASES")

	ClockClosed = CreateCodeError(ErrCode_ClockClosed, "CLOCK_CLOSED")
	ClockBusy   = CreateCodeError(ErrCode_ClockBusy, "CLOCK_BUSY")

	AudioDevice = CreateCodeError(ErrCode_AudioDevice, "AUDIO_DEVICE")
	AudioDecode = CreateCodeError(ErrCode_AudioDecode, "AUDIO_DECODE")

	Config          = CreateCodeError(ErrCode_Config, "CONFIG")
	PresetNotFound  = CreateCodeError(ErrCode_PresetNotFound, "PRESET_NOT_FOUND")
	PresetAmbiguous = CreateCodeError(ErrCode_PresetAmbiguous, "PRESET_AMBIGUOUS")

	NotifyDropped = CreateCodeError(ErrCode_NotifyDropped, "NOTIFY_DROPPED")
	Publish       = CreateCodeError(ErrCode_Publish, "PUBLISH")
)
