package store

import "fmt"

// ConnectivityError：记录库不可达或查询失败
// 约束：由展示层转为用户可见的错误提示，进程不退出
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
