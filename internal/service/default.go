package service

import "sync"

var (
	defaultNotifier   Notifier = NoopNotifier{}
	defaultNotifierMu sync.RWMutex
)

// RegisterNotifier 启动阶段注入消息队列实现，必须在首次取单例之前调用
// 不调用则广播为空操作（清扫进程、测试场景）
func RegisterNotifier(n Notifier) {
	if n == nil {
		return
	}
	defaultNotifierMu.Lock()
	defer defaultNotifierMu.Unlock()
	defaultNotifier = n
}

// DefaultNotifier 当前注册的广播实现
func DefaultNotifier() Notifier {
	defaultNotifierMu.RLock()
	defer defaultNotifierMu.RUnlock()
	return defaultNotifier
}
