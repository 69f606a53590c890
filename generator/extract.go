package generator

import (
	"encoding/json"
	"strings"
)

// Extract 从模型回复中取出 JSON 对象：取第一个 '{' 到最后一个 '}' 之间的内容解析，
// 容忍前后说明文字或代码块。JSON 损坏时直接报错，不做修复。
func Extract(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &ParseError{Raw: raw, Reason: "no JSON object in response"}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, &ParseError{Raw: raw, Reason: "invalid JSON object", Err: err}
	}
	return out, nil
}

// stringField 返回 keys 中第一个非空字符串值。
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func listField(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l
		}
	}
	return nil
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
