package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

func TestListQuery_Normalized(t *testing.T) {
	q := model.ListQuery{Query: "  ENG ", Page: 0, PerPage: 0}.Normalized(3)
	gt.Value(t, q.Query).Equal("eng")
	gt.Number(t, q.Page).Equal(1)
	gt.Number(t, q.PerPage).Equal(3)

	q = model.ListQuery{PerPage: 1000}.Normalized(3)
	gt.Number(t, q.PerPage).Equal(model.MaxPageSize)

	q = model.ListQuery{}.Normalized(0)
	gt.Number(t, q.PerPage).Equal(model.DefaultPageSize)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("first page", func(t *testing.T) {
		p := model.Paginate(items, model.ListQuery{Page: 1, PerPage: 3})
		gt.Value(t, p.Items).Equal([]int{1, 2, 3})
		gt.Number(t, p.Total).Equal(7)
		gt.Number(t, p.TotalPages).Equal(3)
	})

	t.Run("last partial page", func(t *testing.T) {
		p := model.Paginate(items, model.ListQuery{Page: 3, PerPage: 3})
		gt.Value(t, p.Items).Equal([]int{7})
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		p := model.Paginate(items, model.ListQuery{Page: 9, PerPage: 3})
		gt.Array(t, p.Items).Length(0)
		gt.Number(t, p.Page).Equal(9)
	})

	t.Run("empty list has one page", func(t *testing.T) {
		p := model.Paginate([]int{}, model.ListQuery{Page: 1, PerPage: 3})
		gt.Number(t, p.TotalPages).Equal(1)
		gt.Number(t, p.Total).Equal(0)
	})
}
