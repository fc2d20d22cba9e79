package srt

import "fmt"

const (
	DefaultLoginURL  = "https://etk.srail.co.kr/cmc/01/selectLoginForm.do"
	DefaultSearchURL = "https://etk.srail.kr/hpg/hra/01/selectScheduleList.do"
)

const (
	selLoginID       = "#srchDvNm01"
	selLoginPassword = "#hmpgPwdCphd01"
	selLoginButton   = "#login-form > fieldset > div:nth-of-type(1) > div:nth-of-type(1) > div:nth-of-type(2) > div > div:nth-of-type(2) > input"
	selHeaderMenu    = "#wrap > div.header.header-e > div.global.clear > div"

	selOrigin       = "#dptRsStnCdNm"
	selDestination  = "#arvRsStnCdNm"
	selDate         = "#dptDt"
	selHour         = "#dptTm"
	selSearchButton = "input[value='조회하기']"

	// present after a booking click when the seat was already gone
	selBookingFailed = "#isFalseGotoMain"

	selResultRows = "#result-form > fieldset > div.tbl_wrap.th_thead > table > tbody > tr"
)

// Text markers shown by the results table and header.
const (
	MarkerWelcome  = "환영합니다"
	MarkerReserve  = "예약하기"
	MarkerWaitlist = "신청하기"
	MarkerSoldOut  = "매진"
)

const (
	colStandard = 7
	colWaitlist = 8
)

func cellSelector(row, col int) string {
	return fmt.Sprintf("%s:nth-child(%d) > td:nth-child(%d)", selResultRows, row, col)
}

func linkSelector(row, col int) string {
	return cellSelector(row, col) + " > a"
}

// StandardCell is the standard-seat cell of result row (1-indexed).
func StandardCell(row int) string { return cellSelector(row, colStandard) }

// WaitlistCell is the waitlist cell of result row (1-indexed).
func WaitlistCell(row int) string { return cellSelector(row, colWaitlist) }

func StandardLink(row int) string { return linkSelector(row, colStandard) }
func WaitlistLink(row int) string { return linkSelector(row, colWaitlist) }

const (
	BookingFailedMarker = selBookingFailed
	SearchButton        = selSearchButton
)
