// 包 usage：手机使用调查记录模型与记录缓存
package usage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Metric：可缺失的数值指标
// 背景：源表的指标列类型不可靠（文本、空值、脏数据混杂），解析失败的值显式标记为缺失，而非按 0 参与计算
type Metric struct {
	Value float64
	Valid bool
}

// Num：构造有效指标
func Num(v float64) Metric { return Metric{Value: v, Valid: true} }

// Missing：缺失指标
var Missing = Metric{}

// ParseMetric：解析原始文本为指标
// 约束：去除首尾空白；空串、非数字、NaN、±Inf 均视为缺失
func ParseMetric(raw string) Metric {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Num(v)
}

// MarshalJSON：缺失值输出为 null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Num(v)
	return nil
}

// Field：五个数值指标字段
type Field string

const (
	ScreenTime      Field = "screen_time"
	DataUsage       Field = "data_usage"
	SocialMediaTime Field = "social_media_time"
	StreamingTime   Field = "streaming_time"
	GamingTime      Field = "gaming_time"
)

// Fields：指标字段的固定顺序
var Fields = []Field{ScreenTime, DataUsage, SocialMediaTime, StreamingTime, GamingTime}

// ParseField：按列名识别指标字段
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// UsageRecord：一条用户-周期调查记录，取回后不再修改
type UsageRecord struct {
	UserID          string `json:"user_id"`
	Location        string `json:"location"`
	ScreenTime      Metric `json:"screen_time"`
	DataUsage       Metric `json:"data_usage"`
	SocialMediaTime Metric `json:"social_media_time"`
	StreamingTime   Metric `json:"streaming_time"`
	GamingTime      Metric `json:"gaming_time"`
	PrimaryUse      string `json:"primary_use"`
	PhoneBrand      string `json:"phone_brand"`
	Gender          string `json:"gender"`
	Age             string `json:"age"`
}

// Metric：按字段取指标
func (r UsageRecord) Metric(f Field) Metric {
	switch f {
	case ScreenTime:
		return r.ScreenTime
	case DataUsage:
		return r.DataUsage
	case SocialMediaTime:
		return r.SocialMediaTime
	case StreamingTime:
		return r.StreamingTime
	case GamingTime:
		return r.GamingTime
	}
	return Missing
}
