package kubernetes

import (
	"context"
	"fmt"

	"github.com/caddyserver/caddy/v2"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/tools/clientcmd"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

func init() {
	caddy.RegisterModule((*Discoverer)(nil))
}

// Discoverer enlists running pods as mercenaries.
type Discoverer struct {
	Config

	client kubernetes.Interface

	informer cache.SharedIndexInformer
	stopCh   chan struct{}

	added   chan discovery.Recruit
	removed chan string

	log *zap.Logger
}

func (T *Discoverer) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "guild.discovery.discoverers.kubernetes",
		New: func() caddy.Module {
			return new(Discoverer)
		},
	}
}

func (T *Discoverer) Provision(ctx caddy.Context) error {
	T.log = ctx.Logger()

	var restConfig *rest.Config
	var err error
	if T.Kubeconfig != "" {
		restConfig, err = clientcmd.BuildConfigFromFlags("", T.Kubeconfig)
	} else {
		restConfig, err = rest.InClusterConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to get kubernetes config: %w", err)
	}

	T.client, err = kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return T.watch(ctx.Done())
}

func (T *Discoverer) labelSelector() string {
	if T.LabelSelector == "" {
		return "guild.gfx.cafe/mercenary=true"
	}
	return T.LabelSelector
}

func (T *Discoverer) watch(done <-chan struct{}) error {
	if T.log == nil {
		T.log = zap.NewNop()
	}

	factory := informers.NewSharedInformerFactoryWithOptions(
		T.client,
		0, // No resync
		informers.WithNamespace(T.Namespace),
		informers.WithTweakListOptions(func(options *metav1.ListOptions) {
			options.LabelSelector = T.labelSelector()
		}),
	)
	T.informer = factory.Core().V1().Pods().Informer()

	T.added = make(chan discovery.Recruit, 64)
	T.removed = make(chan string, 64)
	T.stopCh = make(chan struct{})

	_, err := T.informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc: func(obj any) {
			T.handlePod(obj, false)
		},
		UpdateFunc: func(_, newObj any) {
			T.handlePod(newObj, false)
		},
		DeleteFunc: func(obj any) {
			T.handlePod(obj, true)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add event handler: %w", err)
	}

	go T.informer.Run(T.stopCh)

	if !cache.WaitForCacheSync(done, T.informer.HasSynced) {
		return fmt.Errorf("failed to sync cache")
	}
	return nil
}

func (T *Discoverer) Cleanup() error {
	if T.stopCh != nil {
		close(T.stopCh)
		T.stopCh = nil
	}
	return nil
}

func (T *Discoverer) handlePod(obj any, deleted bool) {
	if tombstone, ok := obj.(cache.DeletedFinalStateUnknown); ok {
		obj = tombstone.Obj
	}
	pod, ok := obj.(*corev1.Pod)
	if !ok {
		return
	}

	if deleted || !enlistable(pod) {
		select {
		case T.removed <- podID(pod.Namespace, pod.Name):
		default:
			T.log.Error("dropped remove event - removed channel full",
				zap.String("pod", pod.Name),
				zap.String("namespace", pod.Namespace),
			)
		}
		return
	}

	select {
	case T.added <- recruitFromPod(pod):
	default:
		T.log.Error("dropped add/update event - added channel full",
			zap.String("pod", pod.Name),
			zap.String("namespace", pod.Namespace),
		)
	}
}

func (T *Discoverer) Recruits() ([]discovery.Recruit, error) {
	pods, err := T.client.CoreV1().Pods(T.Namespace).List(context.Background(), metav1.ListOptions{
		LabelSelector: T.labelSelector(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	res := make([]discovery.Recruit, 0, len(pods.Items))
	for i := range pods.Items {
		pod := &pods.Items[i]
		if !enlistable(pod) {
			continue
		}
		res = append(res, recruitFromPod(pod))
	}
	return res, nil
}

func (T *Discoverer) Added() <-chan discovery.Recruit {
	return T.added
}

func (T *Discoverer) Removed() <-chan string {
	return T.removed
}

var _ discovery.Discoverer = (*Discoverer)(nil)
var _ caddy.Module = (*Discoverer)(nil)
var _ caddy.Provisioner = (*Discoverer)(nil)
var _ caddy.CleanerUpper = (*Discoverer)(nil)
