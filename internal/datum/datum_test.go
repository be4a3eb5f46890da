package datum

import (
	"testing"

	"github.com/kartikbazzad/queryhost/internal/rawdoc"
)

func TestFromRawDoc_Primitives(t *testing.T) {
	cases := []struct {
		name string
		in   rawdoc.Value
		want Tag
	}{
		{"null", rawdoc.Value{Kind: rawdoc.KindNull}, TagNull},
		{"bool", rawdoc.Value{Kind: rawdoc.KindBool, Bool: true}, TagBool},
		{"number", rawdoc.Value{Kind: rawdoc.KindNumber, Num: 1}, TagNumber},
		{"string", rawdoc.Value{Kind: rawdoc.KindString, Str: "x"}, TagString},
	}
	for _, tc := range cases {
		got, err := FromRawDoc(tc.in, UnlimitedLimits(), SchemaLatest)
		if err != nil {
			t.Fatalf("%s: FromRawDoc: %v", tc.name, err)
		}
		if got.Tag() != tc.want {
			t.Fatalf("%s: Tag() = %v, want %v", tc.name, got.Tag(), tc.want)
		}
	}
}

func TestFromRawDoc_ObjectPreservesOrder(t *testing.T) {
	in := rawdoc.Value{
		Kind: rawdoc.KindObject,
		Obj: []rawdoc.Member{
			{Key: "z", Value: rawdoc.Value{Kind: rawdoc.KindNumber, Num: 1}},
			{Key: "a", Value: rawdoc.Value{Kind: rawdoc.KindNumber, Num: 2}},
		},
	}
	got, err := FromRawDoc(in, UnlimitedLimits(), SchemaLatest)
	if err != nil {
		t.Fatalf("FromRawDoc: %v", err)
	}
	obj := got.AsObject()
	if len(obj) != 2 || obj[0].Key != "z" || obj[1].Key != "a" {
		t.Fatalf("AsObject() = %v, want [z a] in source order", obj)
	}
}

func TestFromGo_ConvertsGenericValues(t *testing.T) {
	in := map[string]interface{}{
		"n": float64(3),
		"s": "hi",
		"a": []interface{}{1.0, 2.0},
		"b": true,
		"z": nil,
	}
	got, err := FromGo(in, UnlimitedLimits(), SchemaLatest)
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	if got.Tag() != TagObject {
		t.Fatalf("Tag() = %v, want TagObject", got.Tag())
	}
}

func TestEqual_DetectsDifference(t *testing.T) {
	a := Array([]Value{Number(1), String("x")})
	b := Array([]Value{Number(1), String("y")})
	if Equal(a, b) {
		t.Fatal("Equal() reported equal for arrays differing in one element")
	}
}
