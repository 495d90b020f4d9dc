package logger

import (
	"go.uber.org/zap"
)

// L 全局 SugaredLogger 句柄，Init 之后可用
var L *zap.SugaredLogger

func init() {
	// 默认给一个开发配置，测试里不用显式 Init
	l, _ := zap.NewDevelopment()
	L = l.Sugar()
}

// Init 按运行模式初始化日志
func Init(production bool) {
	var (
		l   *zap.Logger
		err error
	)
	if production {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	L = l.Sugar()
}

// Sync 刷新缓冲，退出前调用
func Sync() {
	_ = L.Sync()
}
