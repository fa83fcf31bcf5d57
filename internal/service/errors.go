package service

import "errors"

var (
	ErrInvalidParam = errors.New("参数错误")
	ErrSystemBusy   = errors.New("系统繁忙，请稍后重试")
)
