package memaddr

// VirtRange is a half-open range of virtual addresses [Base, End).
type VirtRange struct {
	Base VA
	End  VA
}

// StartPage is the page number containing Base.
func (r VirtRange) StartPage() PN {
	return r.Base.PageNum()
}

// EndPage is ceil(End/PageSize), i.e. one past the last page the
// range touches.
func (r VirtRange) EndPage() PN {
	if r.End.Offset() == 0 {
		return r.End.PageNum()
	}

	return r.End.PageNum() + 1
}

// PageCount is the number of pages StartPage..EndPage covers.
func (r VirtRange) PageCount() int {
	end := r.EndPage()
	start := r.StartPage()

	if end <= start {
		return 0
	}

	return int(end - start)
}

// ForEachPage calls fn once per page number in the range, in
// ascending order, stopping early if fn returns true. It mirrors
// original_source/get-mem.cc's forEachPageNum, which also lets the
// callback request early termination.
func (r VirtRange) ForEachPage(fn func(PN) bool) {
	start, end := r.StartPage(), r.EndPage()

	for pn := start; pn < end; pn++ {
		if fn(pn) {
			return
		}
	}
}

// GFNs returns a closure that yields (pn, GFN, true) for each mapped
// page pn in the range and (pn, 0, false) for unmapped ones, translating through
// t on vcpu's address space. A translation failure for one page is
// skipped, not fatal — the caller only learns a page was unmapped by
// the reported ok=false, matching get-mem.cc's "catch and ignore"
// per-page behavior.
func (r VirtRange) GFNs(t Translator, vcpu int) func(func(PN, GFN, bool) bool) {
	return func(yield func(PN, GFN, bool) bool) {
		r.ForEachPage(func(pn PN) bool {
			pa, err := t.TranslateV2P(vcpu, pn.VA())
			if err != nil {
				return !yield(pn, 0, false)
			}

			return !yield(pn, pa.GFN(), true)
		})
	}
}
