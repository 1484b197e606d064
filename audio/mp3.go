package audio

import (
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/mlog"
)

const resampleQuality = 4

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

// 扬声器全局只能初始化一次, 以第一个文件的采样率为准
func initSpeaker(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = sr
		speakerErr = speaker.Init(sr, sr.N(time.Second/10))
		if speakerErr == nil {
			mlog.Debugf("audio speaker ready, sample rate %d", sr)
		}
	})
	return speakerRate, speakerErr
}

// MP3Player 第一次播放时把mp3解码到内存, 之后重复使用
type MP3Player struct {
	path   string
	volume float64

	once   sync.Once
	buf    *beep.Buffer
	format beep.Format
	err    error
}

// NewMP3Player volume以2为底, 0为原始音量, -1减半
func NewMP3Player(path string, volume float64) *MP3Player {
	return &MP3Player{path: path, volume: volume}
}

func (p *MP3Player) decode() error {
	f, err := os.Open(p.path)
	if err != nil {
		return errs.AudioDecode.Wrap(err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return errs.AudioDecode.Printf("%s", p.path).Wrap(err)
	}
	defer streamer.Close()
	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return errs.AudioDecode.Printf("%s", p.path).Wrap(err)
	}
	p.buf = buf
	p.format = format
	return nil
}

// Load 解码文件并初始化扬声器, 可以提前调用尽早发现问题
func (p *MP3Player) Load() error {
	p.once.Do(func() {
		if p.err = p.decode(); p.err != nil {
			return
		}
		if _, err := initSpeaker(p.format.SampleRate); err != nil {
			p.err = errs.AudioDevice.Wrap(err)
		}
	})
	return p.err
}

// Length 提示音时长
func (p *MP3Player) Length() time.Duration {
	if p.Load() != nil {
		return 0
	}
	return p.format.SampleRate.D(p.buf.Len())
}

func (p *MP3Player) Play() error {
	if err := p.Load(); err != nil {
		return err
	}
	var clip beep.Streamer = p.buf.Streamer(0, p.buf.Len())
	if p.format.SampleRate != speakerRate {
		clip = beep.Resample(resampleQuality, p.format.SampleRate, speakerRate, clip)
	}
	if p.volume != 0 {
		clip = &effects.Volume{Streamer: clip, Base: 2, Volume: p.volume}
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(clip, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
