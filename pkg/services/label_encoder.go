package services

import "sort"

// LabelEncoder カテゴリ値を0始まりの整数コードに変換する。
// クラスは辞書順に並べ、その位置をコードとする。
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder は値の集合からエンコーダーを作成します。
func NewLabelEncoder(values []string) *LabelEncoder {
	e := &LabelEncoder{index: make(map[string]int)}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		e.classes = append(e.classes, v)
	}
	sort.Strings(e.classes)
	for i, c := range e.classes {
		e.index[c] = i
	}
	return e
}

// Transform 値のコードを返す。未知の値はfalse。
func (e *LabelEncoder) Transform(value string) (int, bool) {
	code, ok := e.index[value]
	return code, ok
}

// Classes エンコード済みクラスの一覧（コード順）
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}
