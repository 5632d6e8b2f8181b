package registry

import (
	"errors"
	"testing"

	generrors "github.com/wippyai/buffi/errors"
)

func structType(name string, fields ...Field) *UserType {
	return &UserType{Name: name, Shape: ShapeStruct, Fields: fields}
}

func TestRegister(t *testing.T) {
	r := New()
	point := structType("Point1_f64", Field{Name: "x", Type: F64()})

	if err := r.Register(point); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !r.Contains("Point1_f64") {
		t.Fatal("registry should contain Point1_f64")
	}

	// identical re-registration is a no-op
	again := structType("Point1_f64", Field{Name: "x", Type: F64()})
	if err := r.Register(again); err != nil {
		t.Fatalf("re-register identical: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("len: got %d, want 1", r.Len())
	}
}

func TestRegister_Collision(t *testing.T) {
	r := New()
	if err := r.Register(structType("Point", Field{Name: "x", Type: F64()})); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register(structType("Point", Field{Name: "x", Type: I64()}))
	if err == nil {
		t.Fatal("expected name collision")
	}
	want := &generrors.Error{Phase: generrors.PhaseResolve, Kind: generrors.KindNameCollision}
	if !errors.Is(err, want) {
		t.Errorf("got %v, want name_collision", err)
	}
}

func TestNames_Sorted(t *testing.T) {
	r := New()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := r.Register(structType(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	got := r.Names()
	want := []string{"Alpha", "Mid", "Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBreakCycles_SelfReference(t *testing.T) {
	r := New()
	custom := structType("CustomType",
		Field{Name: "some_content", Type: I64()},
		Field{Name: "itself", Type: Option(Named("CustomType"))},
	)
	if err := r.Register(custom); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := r.BreakCycles(); err != nil {
		t.Fatalf("break cycles: %v", err)
	}

	got, _ := r.Lookup("CustomType")
	itself := got.Fields[1].Type
	if itself.Kind != KindOption {
		t.Fatalf("itself should stay an option, got %v", itself.Kind)
	}
	if itself.Elem.Kind != KindBoxed {
		t.Errorf("self reference should be boxed, got %v", itself.Elem.Kind)
	}
	if itself.Elem.Name != "CustomType" {
		t.Errorf("boxed name: got %q, want CustomType", itself.Elem.Name)
	}
}

func TestBreakCycles_MutualRecursion(t *testing.T) {
	r := New()
	a := structType("Alpha", Field{Name: "next", Type: Option(Named("Beta"))})
	b := structType("Beta", Field{Name: "prev", Type: Option(Named("Alpha"))})
	for _, ut := range []*UserType{a, b} {
		if err := r.Register(ut); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if err := r.BreakCycles(); err != nil {
		t.Fatalf("break cycles: %v", err)
	}

	// the lexicographically least edge (Alpha, slot 0, Beta) is boxed;
	// the Beta -> Alpha edge stays by value
	alpha, _ := r.Lookup("Alpha")
	beta, _ := r.Lookup("Beta")
	if alpha.Fields[0].Type.Elem.Kind != KindBoxed {
		t.Error("Alpha.next should be boxed")
	}
	if beta.Fields[0].Type.Elem.Kind != KindNamed {
		t.Error("Beta.prev should stay by value")
	}

	if _, err := r.TopoOrder(); err != nil {
		t.Errorf("topo order after boxing: %v", err)
	}
}

func TestBreakCycles_Acyclic(t *testing.T) {
	r := New()
	leaf := structType("Leaf", Field{Name: "v", Type: I64()})
	node := structType("Node", Field{Name: "leaf", Type: Named("Leaf")})
	for _, ut := range []*UserType{leaf, node} {
		if err := r.Register(ut); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if err := r.BreakCycles(); err != nil {
		t.Fatalf("break cycles: %v", err)
	}
	got, _ := r.Lookup("Node")
	if got.Fields[0].Type.Kind != KindNamed {
		t.Error("acyclic edge should not be boxed")
	}
}

func TestTopoOrder(t *testing.T) {
	r := New()
	types := []*UserType{
		structType("SerializableError", Field{Name: "message", Type: Str()}),
		structType("CustomType", Field{Name: "some_content", Type: I64()}),
		{
			Name:  "Result_CustomType_SerializableError",
			Shape: ShapeEnum,
			Variants: []Variant{
				{Name: "Ok", Shape: VariantTuple, Fields: []Field{{Type: Named("CustomType")}}},
				{Name: "Err", Shape: VariantTuple, Fields: []Field{{Type: Named("SerializableError")}}},
			},
		},
		{
			Name:  "Result_String_SerializableError",
			Shape: ShapeEnum,
			Variants: []Variant{
				{Name: "Ok", Shape: VariantTuple, Fields: []Field{{Type: Str()}}},
				{Name: "Err", Shape: VariantTuple, Fields: []Field{{Type: Named("SerializableError")}}},
			},
		},
	}
	for _, ut := range types {
		if err := r.Register(ut); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	got, err := r.TopoOrder()
	if err != nil {
		t.Fatalf("topo order: %v", err)
	}
	want := []string{
		"CustomType",
		"SerializableError",
		"Result_CustomType_SerializableError",
		"Result_String_SerializableError",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTopoOrder_UnbrokenCycleFails(t *testing.T) {
	r := New()
	a := structType("Alpha", Field{Name: "next", Type: Named("Beta")})
	b := structType("Beta", Field{Name: "prev", Type: Named("Alpha")})
	for _, ut := range []*UserType{a, b} {
		if err := r.Register(ut); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	_, err := r.TopoOrder()
	if err == nil {
		t.Fatal("expected cycle error without boxing")
	}
	want := &generrors.Error{Phase: generrors.PhaseResolve, Kind: generrors.KindCycleWithoutBoxing}
	if !errors.Is(err, want) {
		t.Errorf("got %v, want cycle_without_boxing", err)
	}
}
