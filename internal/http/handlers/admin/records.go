package admin

import (
	"strconv"

	"github.com/bestie-next/internal/http/handlers/shared"
	"github.com/bestie-next/internal/http/response"
	"github.com/bestie-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListReceipts 分页查询收据
func (h *Handler) ListReceipts(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page"), queryInt(c, "page_size"))
	filter := repository.ReceiptListFilter{
		Page:       page,
		PageSize:   pageSize,
		DonorEmail: c.Query("donor_email"),
		TaxYear:    queryInt(c, "tax_year"),
		StripeMode: c.Query("stripe_mode"),
	}

	receipts, total, err := h.ReceiptRepo.List(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.SuccessWithPage(c, receipts, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// ListDonations 分页查询捐赠记录
func (h *Handler) ListDonations(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page"), queryInt(c, "page_size"))
	filter := repository.DonationListFilter{
		Page:       page,
		PageSize:   pageSize,
		DonorEmail: c.Query("donor_email"),
		Frequency:  c.Query("frequency"),
		Status:     c.Query("status"),
		StripeMode: c.Query("stripe_mode"),
	}

	donations, total, err := h.DonationRepo.List(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.SuccessWithPage(c, donations, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// ListBesties 分页查询受助对象
func (h *Handler) ListBesties(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page"), queryInt(c, "page_size"))
	filter := repository.BestieListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	}

	besties, total, err := h.BestieRepo.List(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, err.Error(), err)
		return
	}
	response.SuccessWithPage(c, besties, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
