package game

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"geo-puzzle/internal/geo"
)

func squareRing(lon, lat, size float64) geo.Ring {
	return geo.Ring{
		{Lat: lat, Lon: lon},
		{Lat: lat, Lon: lon + size},
		{Lat: lat + size, Lon: lon + size},
		{Lat: lat + size, Lon: lon},
		{Lat: lat, Lon: lon},
	}
}

// fixtureCountries：n 个 1°×1° 的“小国”，沿经度错开
func fixtureCountries(n int) []geo.Country {
	cs := make([]geo.Country, n)
	for i := range cs {
		cs[i] = geo.Country{
			Code:    fmt.Sprintf("C%02d", i+1),
			Name:    fmt.Sprintf("Country %d", i+1),
			Ordinal: i + 1,
			Shape:   geo.Shape{Kind: geo.KindPolygon, Rings: []geo.Ring{squareRing(-170+float64(i)*15, float64(i%5)*10, 1)}},
		}
	}
	return cs
}

func shift(rs []geo.Ring, dLon, dLat float64) []geo.Ring {
	out := geo.CloneRings(rs)
	for _, r := range out {
		for i := range r {
			r[i].Lon += dLon
			r[i].Lat += dLat
		}
	}
	return out
}

func newTestSession(t *testing.T, n int) *Session {
	t.Helper()
	s, err := NewSession("s1", fixtureCountries(n), DefaultTuning(), testRand(42))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionStartsActive(t *testing.T) {
	s := newTestSession(t, 20)
	if s.Status != StatusActive || s.Score != 0 || s.Total != 15 {
		t.Fatalf("status=%s score=%d total=%d", s.Status, s.Score, s.Total)
	}
	if len(s.Remaining) != 15 || len(s.Shapes) != 15 || len(s.Order) != 15 {
		t.Fatalf("remaining=%d shapes=%d order=%d", len(s.Remaining), len(s.Shapes), len(s.Order))
	}
	seen := map[int]bool{}
	for _, n := range s.Remaining {
		if n < 1 || n > 20 || seen[n] {
			t.Fatalf("bad remaining set %v", s.Remaining)
		}
		seen[n] = true
	}
	for _, code := range s.Order {
		ps := s.Shapes[code]
		if !ps.Draggable || ps.State != StateUnresolved {
			t.Fatalf("shape %s starts resolved", code)
		}
		if ps.Region.Margin != 10 {
			t.Fatalf("1° country margin = %g, want 10", ps.Region.Margin)
		}
		if len(ps.Displayed) != len(ps.Original) {
			t.Fatalf("displayed rings = %d, original = %d", len(ps.Displayed), len(ps.Original))
		}
	}
	if s.ScoreLine() != "0/15" {
		t.Fatalf("score line = %q", s.ScoreLine())
	}
}

func TestNewSessionCapsRoundSizeAtDatasetSize(t *testing.T) {
	s := newTestSession(t, 5)
	if s.Total != 5 || len(s.Remaining) != 5 {
		t.Fatalf("total=%d remaining=%d, want 5", s.Total, len(s.Remaining))
	}
	if _, err := NewSession("x", nil, DefaultTuning(), testRand(1)); !errors.Is(err, ErrNoCountries) {
		t.Fatalf("empty dataset err = %v", err)
	}
}

func TestDragEndOutsideRegionKeepsShapeDraggable(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[0]
	ps := s.Shapes[code]
	far := shift(ps.Original, 0, 40)
	out, err := s.DragEnd(code, far)
	if err != nil || out != OutcomeMissed {
		t.Fatalf("DragEnd = %v, %v; want missed", out, err)
	}
	if !ps.Draggable || ps.State != StateUnresolved || len(s.Remaining) != 15 || s.Score != 0 {
		t.Fatalf("miss must not resolve: %+v", ps)
	}
	if ps.Displayed[0][0] != far[0][0] {
		t.Fatalf("displayed position not recorded")
	}
	// 可以无限重试
	if out, _ := s.DragEnd(code, shift(ps.Original, 1, 1)); out != OutcomeCorrect {
		t.Fatalf("retry outcome = %v", out)
	}
}

func TestDragEndInsideRegionResolvesCorrect(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[3]
	ps := s.Shapes[code]
	out, err := s.DragEnd(code, shift(ps.Original, 2, -2))
	if err != nil || out != OutcomeCorrect {
		t.Fatalf("DragEnd = %v, %v; want correct", out, err)
	}
	if ps.Draggable || ps.State != StateCorrect {
		t.Fatalf("shape not frozen: %+v", ps)
	}
	if ps.Displayed[0][0] != ps.Original[0][0] {
		t.Fatalf("displayed not snapped back to original")
	}
	if s.Score != 1 || len(s.Remaining) != 14 {
		t.Fatalf("score=%d remaining=%d", s.Score, len(s.Remaining))
	}
	for _, n := range s.Remaining {
		if n == ps.Ordinal {
			t.Fatalf("ordinal %d still remaining", n)
		}
	}
	if s.Message != "Nice! That is "+ps.Name+" indeed." {
		t.Fatalf("message = %q", s.Message)
	}
	if st := ps.Style(); st.FillColor != "#00FF00" || st.ZIndex != 1 || st.Draggable {
		t.Fatalf("style = %+v", st)
	}
}

func TestDropAtTrueCenterResolves(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[1]
	ps := s.Shapes[code]
	out, err := s.DropAt(code, geo.EnvelopeOf(ps.Original).Center())
	if err != nil || out != OutcomeCorrect {
		t.Fatalf("DropAt = %v, %v", out, err)
	}
}

func TestConfirmResolvesIncorrectWithoutCredit(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[0]
	ps := s.Shapes[code]
	out, err := s.Confirm(code)
	if err != nil || out != OutcomeIncorrect {
		t.Fatalf("Confirm = %v, %v", out, err)
	}
	if s.Score != 0 || len(s.Remaining) != 14 || ps.Draggable || ps.State != StateIncorrect {
		t.Fatalf("score=%d remaining=%d shape=%+v", s.Score, len(s.Remaining), ps)
	}
	if s.Message != "Alas, that was "+ps.Name {
		t.Fatalf("message = %q", s.Message)
	}
	if st := ps.Style(); st.FillColor != "#0000FF" {
		t.Fatalf("style = %+v", st)
	}
}

func TestResolvedShapeIgnoresFurtherEvents(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[0]
	if _, err := s.Confirm(code); err != nil {
		t.Fatal(err)
	}
	before := len(s.Remaining)
	for _, ev := range []func() (Outcome, error){
		func() (Outcome, error) { return s.Confirm(code) },
		func() (Outcome, error) { return s.DragEnd(code, s.Shapes[code].Original) },
		func() (Outcome, error) { return s.DropAt(code, geo.Point{}) },
	} {
		out, err := ev()
		if err != nil || out != OutcomeIgnored {
			t.Fatalf("event on resolved shape = %v, %v", out, err)
		}
	}
	if s.Score != 0 || len(s.Remaining) != before || s.Shapes[code].State != StateIncorrect {
		t.Fatalf("resolved shape changed state")
	}
}

func TestUnknownShape(t *testing.T) {
	s := newTestSession(t, 20)
	if _, err := s.DragEnd("NOPE", nil); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Confirm("NOPE"); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("err = %v", err)
	}
}

func TestRoundAllCorrectFinishes(t *testing.T) {
	s := newTestSession(t, 20)
	for i, code := range s.Order {
		if s.Finished() {
			t.Fatalf("finished early at %d", i)
		}
		out, err := s.DragEnd(code, s.Shapes[code].Original)
		if err != nil || out != OutcomeCorrect {
			t.Fatalf("%s: %v, %v", code, out, err)
		}
	}
	if !s.Finished() || len(s.Remaining) != 0 {
		t.Fatalf("status=%s remaining=%v", s.Status, s.Remaining)
	}
	if s.ScoreLine() != "15/15" {
		t.Fatalf("score = %s", s.ScoreLine())
	}
	last := s.Shapes[s.Order[len(s.Order)-1]]
	want := "Nice! That is " + last.Name + " indeed. // Game Finished! Hit refresh to start a new game!"
	if s.Message != want {
		t.Fatalf("message = %q, want %q", s.Message, want)
	}
}

func TestRoundWithOneRejectScores14(t *testing.T) {
	s := newTestSession(t, 20)
	for i, code := range s.Order {
		var err error
		if i == 5 {
			_, err = s.Confirm(code)
		} else {
			_, err = s.DragEnd(code, s.Shapes[code].Original)
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if s.ScoreLine() != "14/15" || !s.Finished() {
		t.Fatalf("score=%s status=%s", s.ScoreLine(), s.Status)
	}
	if !strings.HasSuffix(s.Message, finishedSuffix) {
		t.Fatalf("missing completion message: %q", s.Message)
	}
	if s.Shapes[s.Order[5]].State != StateIncorrect {
		t.Fatalf("rejected shape state = %s", s.Shapes[s.Order[5]].State)
	}
}

func TestScatterNeverStartsResolved(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		s, err := NewSession("s", fixtureCountries(20), DefaultTuning(), testRand(seed))
		if err != nil {
			t.Fatal(err)
		}
		if s.Score != 0 || len(s.Remaining) != s.Total {
			t.Fatalf("seed %d: scatter resolved a shape", seed)
		}
	}
}

func TestDragEndRejectsGeometryThatIsNotTheShape(t *testing.T) {
	s := newTestSession(t, 20)
	code := s.Order[0]
	ps := s.Shapes[code]
	center := geo.EnvelopeOf(ps.Original).Center()
	before := geo.CloneRings(ps.Displayed)

	bad := map[string][]geo.Ring{
		"single_point":  {{center}},
		"empty_ring":    {{}},
		"no_rings":      nil,
		"extra_ring":    append(geo.CloneRings(ps.Original), ps.Original[0]),
		"out_of_sphere": shift(ps.Original, 0, 200),
	}
	for name, rings := range bad {
		t.Run(name, func(t *testing.T) {
			out, err := s.DragEnd(code, rings)
			if !errors.Is(err, ErrBadGeometry) || out != "" {
				t.Fatalf("DragEnd = %q, %v; want ErrBadGeometry", out, err)
			}
			if s.Score != 0 || !ps.Draggable || len(ps.Displayed) != len(before) || ps.Displayed[0][0] != before[0][0] {
				t.Fatalf("rejected drop changed the shape: %+v", ps)
			}
		})
	}

	// 拒绝后仍可按锚点正常放置
	if out, err := s.DropAt(code, center); err != nil || out != OutcomeCorrect {
		t.Fatalf("DropAt after rejected drops = %v, %v", out, err)
	}
}
