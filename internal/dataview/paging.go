package dataview

// PagingInfo describes the current page.
type PagingInfo struct {
	PageSize   int
	PageNum    int
	TotalRows  int
	TotalPages int
}

// PagingOption changes one paging setting.
type PagingOption func(*pagingRequest)

type pagingRequest struct {
	size, num       int
	hasSize, hasNum bool
}

// PageSize sets the number of items per page; 0 disables paging.
func PageSize(n int) PagingOption {
	return func(r *pagingRequest) {
		r.size, r.hasSize = n, true
	}
}

// PageNum selects a zero-based page.
func PageNum(n int) PagingOption {
	return func(r *pagingRequest) {
		r.num, r.hasNum = n, true
	}
}

// SetPagingOptions changes paging and refreshes. The page number is clamped
// to the last page of the current filtered row count.
func (d *DataView) SetPagingOptions(opts ...PagingOption) {
	var req pagingRequest
	for _, opt := range opts {
		opt(&req)
	}

	if req.hasSize {
		d.pageSize = max(0, req.size)
		if d.pageSize > 0 {
			d.pageNum = min(d.pageNum, d.lastPage())
		} else {
			d.pageNum = 0
		}
	}
	if req.hasNum {
		n := max(0, req.num)
		if d.pageSize > 0 {
			n = min(n, d.lastPage())
		}
		d.pageNum = n
	}

	d.OnPagingInfoChanged.Notify(d.PagingInfo(), nil)
	d.requestRefresh()
}

func (d *DataView) lastPage() int {
	return max(0, ceilDiv(d.totalRows, d.pageSize)-1)
}

// PagingInfo returns the current paging state.
func (d *DataView) PagingInfo() PagingInfo {
	pages := 1
	if d.pageSize > 0 {
		pages = max(1, ceilDiv(d.totalRows, d.pageSize))
	}
	return PagingInfo{
		PageSize:   d.pageSize,
		PageNum:    d.pageNum,
		TotalRows:  d.totalRows,
		TotalPages: pages,
	}
}
