package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string
	Skipped string `json:"-"`
	secret  string
}

type record struct {
	attrs map[string]any
}

func (r *record) Attributes() map[string]any     { return r.attrs }
func (r *record) SetAttribute(key string, v any) { r.attrs[key] = v }
func (r *record) UnsetAttribute(key string)      { delete(r.attrs, key) }

type records []any

func (rs records) Items() []any { return rs }

type upperKeys struct{}

func (upperKeys) Supports(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (upperKeys) HasKey(v any, key string) bool {
	_, ok := v.(map[string]any)[key+"!"]
	return ok
}

func (upperKeys) GetKey(v any, key string) (any, bool) {
	val, ok := v.(map[string]any)[key+"!"]
	return val, ok
}

func (upperKeys) ToAssociative(v any) (*Associative, bool) {
	return nil, false
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"42", 42, true},
		{"", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1a", 0, false},
		{"name", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseIndex(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapAdapter(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1}
	a := MapAdapter{}

	assert.True(t, a.Supports(m))
	assert.True(t, a.HasKey(m, "a"))
	assert.False(t, a.HasKey(m, "z"))

	assoc, ok := a.ToAssociative(m)
	require.True(t, ok)
	assert.Equal(t, "a", assoc.Oldest().Key, "keys are sorted")

	_, err := a.SetKey(m, "c", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, m["c"])

	_, err = a.DeleteKey(m, "a")
	require.NoError(t, err)
	assert.NotContains(t, m, "a")
}

func TestSliceAdapter(t *testing.T) {
	s := []any{"x", "y"}
	a := SliceAdapter{}

	v, ok := a.GetKey(s, "1")
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = a.GetKey(s, "2")
	assert.False(t, ok)
	_, ok = a.GetKey(s, "01")
	assert.False(t, ok)

	grown, err := a.SetKey(s, "3", "z")
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y", nil, "z"}, grown)

	_, err = a.SetKey(s, "name", 1)
	assert.Error(t, err)

	shrunk, err := a.DeleteKey([]any{"a", "b", "c"}, "1")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c"}, shrunk)
}

func TestOrderedAdapter_PreservesOrder(t *testing.T) {
	m := NewAssociative()
	m.Set("z", 1)
	m.Set("a", 2)

	assoc, ok := OrderedAdapter{}.ToAssociative(m)
	require.True(t, ok)
	var keys []string
	for pair := assoc.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"z", "a"}, keys)
}

func TestReflectAdapter_Struct(t *testing.T) {
	u := &user{ID: 1, Name: "Ada", Email: "ada@example.com", secret: "s"}
	a := ReflectAdapter{}

	require.True(t, a.Supports(u))
	v, ok := a.GetKey(u, "name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	v, ok = a.GetKey(u, "email")
	assert.True(t, ok, "case-insensitive field names")
	assert.Equal(t, "ada@example.com", v)

	_, ok = a.GetKey(u, "Skipped")
	assert.False(t, ok)
	_, ok = a.GetKey(u, "secret")
	assert.False(t, ok)

	assoc, ok := a.ToAssociative(u)
	require.True(t, ok)
	assert.Equal(t, 3, assoc.Len())

	_, err := a.SetKey(u, "name", "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)

	_, err = a.SetKey(u, "id", int64(9))
	require.NoError(t, err)
	assert.Equal(t, 9, u.ID)

	_, err = a.SetKey(u, "name", 5)
	assert.Error(t, err, "ints are not silently turned into runes")

	_, err = a.SetKey(*u, "name", "x")
	assert.Error(t, err, "struct values are not addressable")
}

func TestReflectAdapter_OpaqueStructsAreScalars(t *testing.T) {
	assert.False(t, ReflectAdapter{}.Supports(time.Now()))
	assert.False(t, ReflectAdapter{}.Supports(42))
	assert.False(t, ReflectAdapter{}.Supports((*user)(nil)))
}

func TestReflectAdapter_TypedContainers(t *testing.T) {
	a := ReflectAdapter{}

	tags := map[string]int{"b": 2, "a": 1}
	v, ok := a.GetKey(tags, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assoc, ok := a.ToAssociative(tags)
	require.True(t, ok)
	assert.Equal(t, "a", assoc.Oldest().Key)

	nums := []int{1, 2}
	grown, err := a.SetKey(nums, "3", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0, 4}, grown)

	ptr := &[]string{"a", "b", "c"}
	_, err = a.DeleteKey(ptr, "0")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, *ptr)
}

func TestEntityAndCollection(t *testing.T) {
	rec := &record{attrs: map[string]any{"name": "Ada"}}
	coll := records{rec}
	r := Default()

	item, ok := r.GetKey(coll, "0")
	require.True(t, ok)
	name, ok := r.GetKey(item, "name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)

	_, err := r.SetKey(rec, "age", 36)
	require.NoError(t, err)
	assert.Equal(t, 36, rec.attrs["age"])

	out, err := r.SetKey(coll, "1", "x")
	require.NoError(t, err)
	assert.Equal(t, []any{rec, "x"}, out)
	assert.Len(t, coll, 1, "collections are copied on write")

	assert.True(t, r.IsList(coll))
	assert.False(t, r.IsList(rec))
}

func TestRegistry_CustomAdaptersRankFirst(t *testing.T) {
	m := map[string]any{"a": 1, "a!": 2}

	base := NewRegistry()
	v, _ := base.GetKey(m, "a")
	assert.Equal(t, 1, v)

	custom := base.With(upperKeys{})
	v, _ = custom.GetKey(m, "a")
	assert.Equal(t, 2, v)

	_, err := custom.SetKey(m, "c", 1)
	assert.Error(t, err, "custom adapter without Writer is read-only")

	v, _ = base.GetKey(m, "a")
	assert.Equal(t, 1, v, "With does not modify the receiver")
}

func TestRegistry_NonContainers(t *testing.T) {
	r := Default()
	for _, v := range []any{nil, "str", 42, 3.5, true, time.Now()} {
		assert.False(t, r.IsContainer(v), "%T", v)
		_, ok := r.GetKey(v, "x")
		assert.False(t, ok)
	}
	_, err := r.SetKey("str", "x", 1)
	assert.Error(t, err)
}

func TestRegistry_IsList(t *testing.T) {
	r := Default()
	assert.True(t, r.IsList([]any{}))
	assert.True(t, r.IsList([]string{"a"}))
	assert.True(t, r.IsList(&[]int{1}))
	assert.False(t, r.IsList(map[string]any{}))
	assert.False(t, r.IsList(NewAssociative()))
	assert.False(t, r.IsList(&user{}))
}
