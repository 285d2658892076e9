package service

import "time"

// Clock 时钟能力接口
// 所有按日期开窗的计算都必须经由它取当前时间，测试里可以固定“现在”
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// SystemClock 真实系统时钟
func SystemClock() Clock {
	return realClock{}
}

// Today 返回时钟所在时区当天零点
func Today(clock Clock) time.Time {
	now := clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
