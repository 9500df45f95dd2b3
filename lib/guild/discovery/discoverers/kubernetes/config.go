package kubernetes

type Config struct {
	// Kubeconfig is a path to a kubeconfig file. If empty, the in-cluster config is used.
	Kubeconfig string `json:"kubeconfig,omitempty"`

	// Namespace to watch for mercenary pods. If empty, watches all namespaces
	Namespace string `json:"namespace,omitempty"`

	// LabelSelector picks which pods are mercenaries (default: guild.gfx.cafe/mercenary=true)
	LabelSelector string `json:"label_selector,omitempty"`
}
