package internship_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/internship"
)

var _ = Describe("Lifecycle Rules", func() {
	Describe("CanTransition", func() {
		It("should let the coordinator pick up a submitted request", func() {
			Expect(internship.CanTransition(internship.StatusSubmitted, internship.StatusUnderReview, authz.RoleLDCoordinator)).To(BeTrue())
		})

		It("should reserve approval for the L&D head and admin", func() {
			Expect(internship.CanTransition(internship.StatusUnderReview, internship.StatusApproved, authz.RoleLDHoD)).To(BeTrue())
			Expect(internship.CanTransition(internship.StatusUnderReview, internship.StatusApproved, authz.RoleAdmin)).To(BeTrue())
			Expect(internship.CanTransition(internship.StatusUnderReview, internship.StatusApproved, authz.RoleLDCoordinator)).To(BeFalse())
		})

		It("should allow rejection from both review states", func() {
			Expect(internship.CanTransition(internship.StatusSubmitted, internship.StatusRejected, authz.RoleLDCoordinator)).To(BeTrue())
			Expect(internship.CanTransition(internship.StatusUnderReview, internship.StatusRejected, authz.RoleLDHoD)).To(BeTrue())
		})

		It("should not allow skipping states", func() {
			Expect(internship.CanTransition(internship.StatusSubmitted, internship.StatusApproved, authz.RoleAdmin)).To(BeFalse())
			Expect(internship.CanTransition(internship.StatusApproved, internship.StatusInProgress, authz.RoleAdmin)).To(BeFalse())
		})

		It("should never leave a terminal state", func() {
			for _, terminal := range []string{internship.StatusCompleted, internship.StatusRejected, internship.StatusCancelled} {
				Expect(internship.CanTransition(terminal, internship.StatusUnderReview, authz.RoleAdmin)).To(BeFalse(), "from %s", terminal)
			}
		})

		It("should fail closed on unknown roles and states", func() {
			Expect(internship.CanTransition(internship.StatusSubmitted, internship.StatusUnderReview, "auditor")).To(BeFalse())
			Expect(internship.CanTransition("draft", internship.StatusUnderReview, authz.RoleAdmin)).To(BeFalse())
		})
	})

	Describe("IsTerminal", func() {
		It("should mark completed, rejected and cancelled as terminal", func() {
			Expect(internship.IsTerminal(internship.StatusCompleted)).To(BeTrue())
			Expect(internship.IsTerminal(internship.StatusRejected)).To(BeTrue())
			Expect(internship.IsTerminal(internship.StatusCancelled)).To(BeTrue())
			Expect(internship.IsTerminal(internship.StatusInProgress)).To(BeFalse())
		})
	})

	Describe("CanCancel", func() {
		It("should let the submitter cancel their own non-terminal request", func() {
			req := &internship.Request{Status: internship.StatusUnderReview, SubmittedBy: 7}
			Expect(internship.CanCancel(req, 7, authz.RoleTrainee)).To(BeTrue())
		})

		It("should let an admin cancel anyone's request", func() {
			req := &internship.Request{Status: internship.StatusApproved, SubmittedBy: 7}
			Expect(internship.CanCancel(req, 99, authz.RoleAdmin)).To(BeTrue())
		})

		It("should refuse other users", func() {
			req := &internship.Request{Status: internship.StatusApproved, SubmittedBy: 7}
			Expect(internship.CanCancel(req, 8, authz.RoleLDCoordinator)).To(BeFalse())
		})

		It("should refuse cancellation of terminal requests", func() {
			req := &internship.Request{Status: internship.StatusCompleted, SubmittedBy: 7}
			Expect(internship.CanCancel(req, 7, authz.RoleTrainee)).To(BeFalse())
		})
	})

	Describe("RequiresComment", func() {
		It("should require a comment only for rejection", func() {
			Expect(internship.RequiresComment(internship.StatusRejected)).To(BeTrue())
			Expect(internship.RequiresComment(internship.StatusApproved)).To(BeFalse())
		})
	})
})
