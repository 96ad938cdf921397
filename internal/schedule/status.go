package schedule

import (
	"time"

	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/pkg/utils"
)

// Resolve computes the transient display status and overdue-day count for one
// installment at the given moment. Date comparisons are date-only in the
// business location. The caller supplies now; this function never reads the
// process clock and never mutates the persisted row.
func Resolve(inst *domain.Installment, now time.Time, loc *time.Location) (string, int) {
	due := utils.StartOfDay(inst.DueDate, loc)
	today := utils.StartOfDay(now, loc)

	if inst.PaidAt != nil {
		paid := utils.StartOfDay(*inst.PaidAt, loc)
		days := 0
		if paid.After(due) {
			days = utils.DaysBetween(due, paid, loc)
		}
		return domain.InstallmentStatusPaid, days
	}

	if inst.Status != domain.InstallmentStatusPaid && today.After(due) {
		return domain.InstallmentStatusOverdue, utils.DaysBetween(due, today, loc)
	}

	return inst.Status, 0
}

// AggregateLoanStatus rolls the multiset of persisted installment statuses up
// into the loan's status. Precedence: all paid wins, then any persisted
// overdue, otherwise active. Pure function of the counts; the order of prior
// transitions is irrelevant.
func AggregateLoanStatus(counts domain.StatusCounts) string {
	switch {
	case counts.Total() > 0 && counts.Paid == counts.Total():
		return domain.LoanStatusPaid
	case counts.Overdue > 0:
		return domain.LoanStatusOverdue
	default:
		return domain.LoanStatusActive
	}
}

// CountStatuses tallies persisted statuses over a loan's installments.
func CountStatuses(rows []*domain.Installment) domain.StatusCounts {
	var counts domain.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case domain.InstallmentStatusPaid:
			counts.Paid++
		case domain.InstallmentStatusOverdue:
			counts.Overdue++
		default:
			counts.Pending++
		}
	}
	return counts
}
