package quaternion

import (
	"strings"
	"testing"
)

func TestMul_BasisTable(t *testing.T) {
	minus := func(q Quaternion) Quaternion { return q.Neg() }
	tests := []struct {
		name string
		a, b Quaternion
		want Quaternion
	}{
		{"i*i", I, I, minus(One)},
		{"j*j", J, J, minus(One)},
		{"k*k", K, K, minus(One)},
		{"i*j", I, J, K},
		{"j*i", J, I, minus(K)},
		{"j*k", J, K, I},
		{"k*j", K, J, minus(I)},
		{"k*i", K, I, J},
		{"i*k", I, K, minus(J)},
		{"1*q", One, Half, Half},
		{"q*1", Half, One, Half},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Mul(tc.b); got != tc.want {
				t.Errorf("%s = %s, want %s", tc.name, got, tc.want)
			}
		})
	}
}

func TestMul_NotCommutative(t *testing.T) {
	if I.Mul(J).Equal(J.Mul(I)) {
		t.Error("expected i*j != j*i")
	}
	if Half.Mul(I).Equal(I.Mul(Half)) {
		t.Error("expected q*i != i*q")
	}
}

func TestMul_Associative(t *testing.T) {
	for _, a := range alphabet {
		for _, b := range alphabet {
			for _, c := range alphabet {
				left := a.Mul(b).Mul(c)
				right := a.Mul(b.Mul(c))
				if left != right {
					t.Fatalf("(%s*%s)*%s = %s, but %s*(%s*%s) = %s", a, b, c, left, a, b, c, right)
				}
			}
		}
	}
}

func TestMul_DistributesOverAdd(t *testing.T) {
	for _, a := range alphabet {
		for _, b := range alphabet {
			for _, c := range alphabet {
				if got, want := a.Mul(b.Add(c)), a.Mul(b).Add(a.Mul(c)); got != want {
					t.Fatalf("left distributivity failed for %s, %s, %s: %s != %s", a, b, c, got, want)
				}
				if got, want := b.Add(c).Mul(a), b.Mul(a).Add(c.Mul(a)); got != want {
					t.Fatalf("right distributivity failed for %s, %s, %s: %s != %s", a, b, c, got, want)
				}
			}
		}
	}
}

func TestConj_UnitNorm(t *testing.T) {
	for i, q := range alphabet {
		p := q.Mul(q.Conj())
		if p != One {
			t.Errorf("alphabet[%d] %s: q*conj(q) = %s, want 1", i, q, p)
		}
		if q.Norm() != 1 {
			t.Errorf("alphabet[%d] %s: norm = %v, want 1", i, q, q.Norm())
		}
	}
}

func TestConj_ReversesProducts(t *testing.T) {
	for _, a := range alphabet {
		for _, b := range alphabet {
			if got, want := a.Mul(b).Conj(), b.Conj().Mul(a.Conj()); got != want {
				t.Fatalf("conj(%s*%s) = %s, want %s", a, b, got, want)
			}
		}
	}
}

func TestNegAndScale(t *testing.T) {
	if got := Half.Neg(); got != NewHalf(-1, -1, -1, -1) {
		t.Errorf("Neg(q) = %s", got)
	}
	if got := One.Scale(5); got != New(5, 0, 0, 0) {
		t.Errorf("Scale(1, 5) = %s", got)
	}
	if got := Half.Scale(2); got != New(1, 1, 1, 1) {
		t.Errorf("Scale(q, 2) = %s", got)
	}
	if !I.Add(I.Neg()).IsZero() {
		t.Error("i + (-i) should be zero")
	}
	if !I.Sub(I).IsZero() {
		t.Error("i - i should be zero")
	}
}

func TestIsReal(t *testing.T) {
	if !New(3, 0, 0, 0).IsReal() {
		t.Error("3 should be real")
	}
	if Half.IsReal() {
		t.Error("q should not be real")
	}
	if !Zero.IsReal() {
		t.Error("0 should be real")
	}
}

func TestComponents(t *testing.T) {
	w, x, y, z := Half.Mul(I).Components()
	if w != -0.5 || x != 0.5 || y != 0.5 || z != -0.5 {
		t.Errorf("q*i components = (%v, %v, %v, %v)", w, x, y, z)
	}
}

func TestNewHalf_PanicsOnEven(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for even numerator")
		}
	}()
	_ = NewHalf(1, 2, 1, 1)
}

func TestString(t *testing.T) {
	tests := []struct {
		q    Quaternion
		want string
	}{
		{Zero, "0"},
		{One, "1"},
		{One.Neg(), "-1"},
		{I, "i"},
		{K.Neg(), "-k"},
		{Half, "0.5+0.5i+0.5j+0.5k"},
		{Half.Mul(I), "-0.5+0.5i+0.5j-0.5k"},
		{New(3, 0, -2, 0), "3-2j"},
		{New(0, 0, 0, 4), "4k"},
	}

	for _, tc := range tests {
		if got := tc.q.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestAlphabet_DeclarationOrder(t *testing.T) {
	a := Alphabet()
	want := []Quaternion{
		New(1, 0, 0, 0), New(-1, 0, 0, 0),
		New(0, 1, 0, 0), New(0, -1, 0, 0),
		New(0, 0, 1, 0), New(0, 0, -1, 0),
		New(0, 0, 0, 1), New(0, 0, 0, -1),
		NewHalf(1, 1, 1, 1), NewHalf(-1, -1, -1, -1),
		NewHalf(-1, 1, 1, -1), NewHalf(1, -1, -1, 1),
		NewHalf(-1, -1, 1, 1), NewHalf(1, 1, -1, -1),
		NewHalf(-1, 1, -1, 1), NewHalf(1, -1, 1, -1),
	}
	for i := range want {
		if a[i] != want[i] {
			t.Errorf("alphabet[%d] = %s, want %s", i, a[i], want[i])
		}
	}
}

func TestAlphabet_ClosedUnderMul(t *testing.T) {
	// The alphabet is not a group, but products of its elements are always units.
	for _, a := range alphabet {
		for _, b := range alphabet {
			if n := a.Mul(b).Norm(); n != 1 {
				t.Fatalf("%s*%s has norm %v", a, b, n)
			}
		}
	}
}

func TestLabel_Bijection(t *testing.T) {
	seen := make(map[byte]bool)
	for i, q := range alphabet {
		l := Label(q)
		if seen[l] {
			t.Fatalf("label %q used twice", l)
		}
		seen[l] = true

		back, ok := FromLabel(l)
		if !ok || back != q {
			t.Errorf("FromLabel(%q) = %s, %v; want %s", l, back, ok, q)
		}
		idx, ok := Index(q)
		if !ok || idx != i {
			t.Errorf("Index(%s) = %d, %v; want %d", q, idx, ok, i)
		}
		if At(i) != q {
			t.Errorf("At(%d) = %s, want %s", i, At(i), q)
		}
	}
	if len(seen) != Size || len(Labels) != Size {
		t.Errorf("expected %d labels, got %d", Size, len(seen))
	}
}

func TestLabel_KnownSymbols(t *testing.T) {
	tests := []struct {
		q    Quaternion
		want byte
	}{
		{One, '+'},
		{One.Neg(), '-'},
		{J.Neg(), 'J'},
		{Half, 'q'},
		{Half.Neg(), 'Q'},
		{Half.Mul(I), 'x'},
		{Half.Mul(K.Neg()), 'Z'},
	}
	for _, tc := range tests {
		if got := Label(tc.q); got != tc.want {
			t.Errorf("Label(%s) = %q, want %q", tc.q, got, tc.want)
		}
	}
}

func TestLabel_PanicsOutsideAlphabet(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "not an alphabet element") {
			t.Errorf("unexpected panic message: %v", r)
		}
	}()
	_ = Label(New(2, 0, 0, 0))
}

func TestFromRune(t *testing.T) {
	i := 0
	for _, r := range LegacyLabels {
		q, ok := FromRune(r)
		if !ok || q != alphabet[i] {
			t.Errorf("FromRune(%q) = %s, %v; want %s", r, q, ok, alphabet[i])
		}
		i++
	}
	for i, c := range []byte(Labels) {
		if q, ok := FromRune(rune(c)); !ok || q != alphabet[i] {
			t.Errorf("FromRune(%q) = %s, %v; want %s", c, q, ok, alphabet[i])
		}
	}
	for _, r := range []rune{'a', 'é', 0xff, 0x1FF} {
		if _, ok := FromRune(r); ok {
			t.Errorf("FromRune(%q) should fail", r)
		}
	}
}

func TestFromLabel_Unknown(t *testing.T) {
	for _, c := range []byte{'a', '0', ' ', 'o', 0xff} {
		if _, ok := FromLabel(c); ok {
			t.Errorf("FromLabel(%q) should fail", c)
		}
	}
	if Contains(Zero) {
		t.Error("zero is not in the alphabet")
	}
}
