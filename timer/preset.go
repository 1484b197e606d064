package timer

import (
	"strings"
	"time"

	"github.com/armon/go-radix"

	"github.com/fixkme/mapletimer/errs"
)

const DefaultPreset = "maple"

// 内置预设 名字 -> 各段
var builtinPresets = map[string][]Phase{
	// 刷怪140秒, 捡东西25秒, 刷怪结束时提醒
	"maple": {
		{Name: "Farming", Duration: 140 * time.Second, Alert: true},
		{Name: "Pickup", Duration: 25 * time.Second},
	},
	"tomato": {{Name: "Tomato", Duration: 20 * time.Minute, Alert: true}},
	"short":  {{Name: "Short", Duration: 5 * time.Minute, Alert: true}},
	"long":   {{Name: "Long", Duration: 10 * time.Minute, Alert: true}},
}

// Presets 预设表, 支持唯一前缀匹配
type Presets struct {
	tree *radix.Tree
}

// NewPresets 内置预设加上自定义的, 同名时自定义覆盖内置
func NewPresets(custom map[string][]Phase) *Presets {
	p := &Presets{tree: radix.New()}
	for name, phases := range builtinPresets {
		p.tree.Insert(name, phases)
	}
	for name, phases := range custom {
		p.tree.Insert(strings.ToLower(name), append([]Phase(nil), phases...))
	}
	return p
}

// Lookup 按全名或唯一前缀查找, 返回全名和各段的副本
func (p *Presets) Lookup(name string) (string, []Phase, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", nil, errs.PresetNotFound.Printf("empty name")
	}
	if v, ok := p.tree.Get(key); ok {
		return key, copyPhases(v), nil
	}
	var names []string
	var found any
	p.tree.WalkPrefix(key, func(s string, v any) bool {
		names = append(names, s)
		found = v
		return false
	})
	switch len(names) {
	case 0:
		return "", nil, errs.PresetNotFound.Print(name)
	case 1:
		return names[0], copyPhases(found), nil
	}
	return "", nil, errs.PresetAmbiguous.Printf("%s matches %s", name, strings.Join(names, ","))
}

// Names 按字典序返回所有预设名
func (p *Presets) Names() []string {
	names := make([]string, 0, p.tree.Len())
	p.tree.Walk(func(s string, _ any) bool {
		names = append(names, s)
		return false
	})
	return names
}

func copyPhases(v any) []Phase {
	return append([]Phase(nil), v.([]Phase)...)
}
