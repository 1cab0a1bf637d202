package engine

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRootCause(t *testing.T) {
	Convey("RootCause", t, func() {
		Convey("Should return non-filter errors unchanged", func() {
			err := &Error{Category: CategoryNetwork, Code: 1001}
			So(RootCause(err), ShouldEqual, err)
		})

		Convey("Should peel nested filter wrappers", func() {
			inner := &Error{Category: CategoryMedia, Code: 3000}
			wrapped := &Error{Category: CategoryFilter, Code: 1006, Cause: inner}
			doubly := &Error{Category: CategoryFilter, Code: 1007, Cause: wrapped}
			So(RootCause(doubly), ShouldEqual, inner)
		})

		Convey("Should handle plain errors", func() {
			err := errors.New("boom")
			So(RootCause(err), ShouldEqual, err)
		})
	})
}

func TestIsTextError(t *testing.T) {
	Convey("IsTextError", t, func() {
		Convey("Should match direct text errors", func() {
			So(IsTextError(&Error{Category: CategoryText, Code: 2000}), ShouldBeTrue)
		})

		Convey("Should match text errors behind filter wrappers", func() {
			inner := &Error{Category: CategoryText, Code: 2001}
			wrapped := &Error{Category: CategoryFilter, Code: 1006, Cause: inner}
			So(IsTextError(wrapped), ShouldBeTrue)
		})

		Convey("Should reject other categories", func() {
			So(IsTextError(&Error{Category: CategoryMedia, Code: 3000}), ShouldBeFalse)
			So(IsTextError(errors.New("boom")), ShouldBeFalse)
		})
	})
}
